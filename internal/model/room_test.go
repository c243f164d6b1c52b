package model

import (
	"reflect"
	"testing"
)

func TestMapRooms(t *testing.T) {
	tests := []struct {
		name        string
		raw         []map[string]any
		want        []Room
		wantDropped int
	}{
		{
			name: "정상 행을 모두 매핑",
			raw: []map[string]any{
				{"회의실ID": "room-6", "층": "6F", "이름": "대회의실", "활성화": true},
				{"회의실ID": "room-7", "층": "7F", "이름": "소회의실", "활성화": false},
			},
			want: []Room{
				{ID: "room-6", Floor: "6F", Name: "대회의실", IsActive: true},
				{ID: "room-7", Floor: "7F", Name: "소회의실", IsActive: false},
			},
		},
		{
			name: "층이 빈 행은 제외",
			raw: []map[string]any{
				{"층": "6F", "활성화": true},
				{"층": "", "활성화": true},
			},
			want: []Room{
				{ID: "6F", Floor: "6F", Name: "6F", IsActive: true},
			},
			wantDropped: 1,
		},
		{
			name: "층이 공백뿐인 행도 제외",
			raw: []map[string]any{
				{"층": "   "},
			},
			want:        []Room{},
			wantDropped: 1,
		},
		{
			name: "ID와 이름이 없으면 층 코드로 대체",
			raw: []map[string]any{
				{"층": "b1"},
			},
			want: []Room{
				{ID: "B1", Floor: "B1", Name: "B1", IsActive: true},
			},
		},
		{
			name: "층은 트림 후 대문자로 정규화",
			raw: []map[string]any{
				{"회의실ID": "r1", "층": " 3f ", "이름": "북쪽"},
			},
			want: []Room{
				{ID: "r1", Floor: "3F", Name: "북쪽", IsActive: true},
			},
		},
		{
			name: "truthy 문자열은 활성으로 해석",
			raw: []map[string]any{
				{"층": "1F", "활성화": "TRUE"},
				{"층": "2F", "활성화": "1"},
				{"층": "3F", "활성화": "yes"},
			},
			want: []Room{
				{ID: "1F", Floor: "1F", Name: "1F", IsActive: true},
				{ID: "2F", Floor: "2F", Name: "2F", IsActive: true},
				{ID: "3F", Floor: "3F", Name: "3F", IsActive: true},
			},
		},
		{
			name: "해석할 수 없는 활성화 값은 비활성",
			raw: []map[string]any{
				{"층": "1F", "활성화": "maybe"},
				{"층": "2F", "활성화": 0.0},
			},
			want: []Room{
				{ID: "1F", Floor: "1F", Name: "1F", IsActive: false},
				{ID: "2F", Floor: "2F", Name: "2F", IsActive: false},
			},
		},
		{
			name: "활성화가 명시적 null이면 비활성, 키가 없으면 활성",
			raw: []map[string]any{
				{"층": "1F", "활성화": nil},
				{"층": "2F"},
			},
			want: []Room{
				{ID: "1F", Floor: "1F", Name: "1F", IsActive: false},
				{ID: "2F", Floor: "2F", Name: "2F", IsActive: true},
			},
		},
		{
			name: "빈 입력",
			raw:  []map[string]any{},
			want: []Room{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := MapRooms(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MapRooms() = %+v, want %+v", got, tt.want)
			}
			if len(dropped) != tt.wantDropped {
				t.Errorf("MapRooms() dropped %d rows, want %d", len(dropped), tt.wantDropped)
			}
			if len(got)+len(dropped) != len(tt.raw) {
				t.Errorf("MapRooms() mapped+dropped = %d, want %d", len(got)+len(dropped), len(tt.raw))
			}
		})
	}
}

func TestMapRoomsDroppedReason(t *testing.T) {
	_, dropped := MapRooms([]map[string]any{
		{"층": "6F"},
		{"층": ""},
	})

	if len(dropped) != 1 {
		t.Fatalf("expected 1 dropped row, got %d", len(dropped))
	}
	if dropped[0].Index != 1 {
		t.Errorf("dropped index = %d, want 1", dropped[0].Index)
	}
	if dropped[0].Reason != "empty floor" {
		t.Errorf("dropped reason = %q, want %q", dropped[0].Reason, "empty floor")
	}
}
