package models

import "testing"

func TestSortAssignmentsByRole(t *testing.T) {
	roster := []Assignment{
		{ID: 1, Role: RoleObserver},
		{ID: 2, Role: RoleReferee},
		{ID: 3, Role: RoleDirector},
		{ID: 4, Role: RoleReferee},
		{ID: 5, Role: "Starter"},
	}

	sorted := SortAssignmentsByRole(roster)

	wantOrder := []int{3, 2, 4, 1, 5}
	for i, want := range wantOrder {
		if sorted[i].ID != want {
			t.Fatalf("position %d: got assignment %d, want %d (order %v)", i, sorted[i].ID, want, sorted)
		}
	}
	// Исходный срез не переупорядочивается.
	if roster[0].ID != 1 {
		t.Error("SortAssignmentsByRole must not mutate its input")
	}
}

func TestNotificationMetadataValidate(t *testing.T) {
	tests := []struct {
		name     string
		metadata *NotificationMetadata
		missing  []string
	}{
		{"nil metadata", nil, []string{"metadata"}},
		{"empty", &NotificationMetadata{}, []string{"subject", "message"}},
		{"no message", &NotificationMetadata{Subject: "Convocazione"}, []string{"message"}},
		{"complete", &NotificationMetadata{Subject: "Convocazione", Message: "In allegato."}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.metadata.Validate()
			if len(got) != len(tt.missing) {
				t.Fatalf("Validate() = %v, want %v", got, tt.missing)
			}
			for i := range got {
				if got[i] != tt.missing[i] {
					t.Fatalf("Validate() = %v, want %v", got, tt.missing)
				}
			}
		})
	}
}

func TestTournamentEffectiveNational(t *testing.T) {
	national := &Tournament{IsNational: true}
	if !national.EffectiveNational() {
		t.Error("explicitly national tournament must be national")
	}

	byType := &Tournament{Type: &TournamentType{IsNational: true}}
	if !byType.EffectiveNational() {
		t.Error("tournament with a national type must be national")
	}

	zonal := &Tournament{Type: &TournamentType{}}
	if zonal.EffectiveNational() {
		t.Error("zonal tournament reported as national")
	}
}

func TestZoneFolderCodeOrDefault(t *testing.T) {
	custom := "SZR-LAZIO"
	withCode := &Zone{ID: 3, FolderCode: &custom}
	if got := withCode.FolderCodeOrDefault(); got != "SZR-LAZIO" {
		t.Errorf("FolderCodeOrDefault() = %q, want explicit code", got)
	}

	empty := ""
	blankCode := &Zone{ID: 3, FolderCode: &empty}
	if got := blankCode.FolderCodeOrDefault(); got != "SZR3" {
		t.Errorf("FolderCodeOrDefault() with blank code = %q, want SZR3", got)
	}

	plain := &Zone{ID: 6}
	if got := plain.FolderCodeOrDefault(); got != "SZR6" {
		t.Errorf("FolderCodeOrDefault() = %q, want SZR6", got)
	}
}
