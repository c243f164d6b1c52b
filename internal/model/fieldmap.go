package model

import (
	"fmt"
	"strings"
)

// 레거시 스프레드시트 스키마에 대한 지식은 이 파일에만 둡니다.
// Apps Script API가 돌려주는 행은 한글 컬럼명을 키로 쓰는 느슨한 맵이므로,
// 레거시 키와 정규화 규칙을 한 곳에 모아 리뷰 가능하게 유지합니다.
const (
	// rooms
	legacyKeyRoomID     = "회의실ID"
	legacyKeyFloor      = "층"
	legacyKeyRoomName   = "이름"
	legacyKeyRoomActive = "활성화"

	// reservations
	legacyKeyReservationID = "예약ID"
	legacyKeyDate          = "날짜"
	legacyKeyStartTime     = "시작시간"
	legacyKeyEndTime       = "종료시간"
	legacyKeyTeamName      = "팀명"
	legacyKeyUserName      = "예약자"
	legacyKeyCreatedAt     = "생성일시"
)

// stringField는 느슨한 타입의 레거시 값을 트림된 문자열로 정규화합니다.
// 키가 없거나 값이 null이면 빈 문자열을 반환합니다.
func stringField(row map[string]any, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}

// boolField는 불리언 또는 truthy 문자열("true", "1", "yes", 대소문자 무시)을 해석합니다.
// 해석할 수 없는 값(명시적 null 포함)은 false, 키가 없으면 defaultValue를 반환합니다.
func boolField(row map[string]any, key string, defaultValue bool) bool {
	v, ok := row[key]
	if !ok {
		return defaultValue
	}
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	switch strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", v))) {
	case "true", "1", "yes":
		return true
	}
	return false
}
