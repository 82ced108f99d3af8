package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2025-03-14", false},
		{"2024-02-29", false},
		{"2023-02-29", true},
		{"2025-13-01", true},
		{"2025-1-5", true},
		{"14-03-2025", true},
		{"2025-03-14T10:00:00Z", true},
		{"", true},
		{"tomorrow", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && d.String() != tt.input {
				t.Errorf("String() = %s, want %s", d.String(), tt.input)
			}
		})
	}
}

func TestDate_JSON(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"2025-06-01"` {
		t.Errorf("Marshal() = %s, want \"2025-06-01\"", data)
	}

	var parsed Date
	if err := json.Unmarshal([]byte(`"2025-06-01"`), &parsed); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !parsed.Equal(d.Time) {
		t.Errorf("Unmarshal() = %v, want %v", parsed, d)
	}

	if err := json.Unmarshal([]byte(`"06/01/2025"`), &parsed); err == nil {
		t.Error("Unmarshal() should reject malformed dates")
	}
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name    string
		src     any
		want    string
		wantErr bool
	}{
		{name: "time value", src: time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC), want: "2025-06-01"},
		{name: "string", src: "2025-06-01", want: "2025-06-01"},
		{name: "bytes", src: []byte("2025-06-01"), want: "2025-06-01"},
		{name: "timestamp string", src: "2025-06-01T00:00:00Z", want: "2025-06-01"},
		{name: "garbage", src: "not a date", wantErr: true},
		{name: "unsupported type", src: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := d.Scan(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Scan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d.String() != tt.want {
				t.Errorf("Scan() = %s, want %s", d.String(), tt.want)
			}
		})
	}
}

func TestDate_Value(t *testing.T) {
	d, _ := ParseDate("2025-06-01")
	v, err := d.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if v != "2025-06-01" {
		t.Errorf("Value() = %v, want 2025-06-01", v)
	}
}

func TestSubject_Valid(t *testing.T) {
	for _, s := range Subjects {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []Subject{"", "dev", "DEV", "Math"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestRole_CanManage(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		userID  string
		ownerID string
		want    bool
	}{
		{"teacher owns workshop", RoleTeacher, "u1", "u1", true},
		{"teacher does not own workshop", RoleTeacher, "u1", "u2", false},
		{"teacher with empty id", RoleTeacher, "", "", false},
		{"admin manages any workshop", RoleAdmin, "u9", "u2", true},
		{"unknown role", Role("guest"), "u1", "u1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.CanManage(tt.userID, tt.ownerID); got != tt.want {
				t.Errorf("CanManage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRole_Valid(t *testing.T) {
	if !RoleTeacher.Valid() || !RoleAdmin.Valid() {
		t.Error("teacher and admin should be valid roles")
	}
	if Role("TEACHER").Valid() {
		t.Error("roles are case-sensitive")
	}
	if Role("guest").CanCreateWorkshops() {
		t.Error("unknown roles cannot create workshops")
	}
}
