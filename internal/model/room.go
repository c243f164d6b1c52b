package model

import "strings"

// Room은 타깃 스토어 rooms 테이블의 한 행입니다
type Room struct {
	ID       string `json:"id"`
	Floor    string `json:"floor"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// DroppedRow는 매핑 단계에서 제외된 원본 행의 감사 기록입니다
// 매핑은 실패하지 않고 행을 버리기만 하므로, 버린 이유를 여기로 남깁니다
type DroppedRow struct {
	Index  int
	Reason string
}

// MapRooms는 레거시 회의실 행을 정규화된 Room 목록으로 변환합니다
// 층 코드는 트림 후 대문자로 정규화하며, 층이 비어 있는 행은
// 오류 없이 제외하고 DroppedRow로만 보고합니다
func MapRooms(raw []map[string]any) ([]Room, []DroppedRow) {
	rooms := make([]Room, 0, len(raw))
	var dropped []DroppedRow

	for i, row := range raw {
		floor := strings.ToUpper(stringField(row, legacyKeyFloor))
		if floor == "" {
			dropped = append(dropped, DroppedRow{Index: i, Reason: "empty floor"})
			continue
		}

		// 회의실ID와 이름이 비어 있으면 층 코드를 그대로 씁니다
		id := stringField(row, legacyKeyRoomID)
		if id == "" {
			id = floor
		}
		name := stringField(row, legacyKeyRoomName)
		if name == "" {
			name = floor
		}

		rooms = append(rooms, Room{
			ID:       id,
			Floor:    floor,
			Name:     name,
			IsActive: boolField(row, legacyKeyRoomActive, true),
		})
	}

	return rooms, dropped
}
