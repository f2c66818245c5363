package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestServerChangeRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	parent := "f0"
	change := ServerChange{
		Kind: KindFolder,
		Record: &Folder{
			Syncable: Syncable{ID: "f1", OwnerID: "u1", CreatedAt: at, UpdatedAt: at},
			Name:     "Work",
			ParentID: &parent,
		},
	}

	data, err := json.Marshal(change)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.HasPrefix(string(data), `{"kind":"folder","id":"f1"`) {
		t.Errorf("Marshal() = %s, want flat object starting with kind", data)
	}

	var decoded ServerChange
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	folder, ok := decoded.Record.(*Folder)
	if !ok {
		t.Fatalf("decoded record is %T, want *Folder", decoded.Record)
	}
	if folder.Name != "Work" || folder.ParentID == nil || *folder.ParentID != "f0" {
		t.Errorf("decoded folder = %+v", folder)
	}
}

func TestServerChangeUnknownKind(t *testing.T) {
	var c ServerChange
	if err := json.Unmarshal([]byte(`{"kind":"note","id":"n1"}`), &c); err == nil {
		t.Error("Unmarshal() with unknown kind should fail")
	}
}

func TestSyncRequestDecoding(t *testing.T) {
	body := `{
		"lastSyncTimestamp": null,
		"clientChanges": {
			"bookmarks": [{"id": "b1", "url": "https://go.dev", "updatedAt": "2026-01-01T00:00:00Z", "folderIds": []}],
			"folders": [
				{"id": "f1", "name": "A", "updatedAt": "2026-01-01T00:00:00Z", "parentId": null},
				{"id": "f2", "name": "B", "updatedAt": "2026-01-01T00:00:00Z"}
			]
		}
	}`

	var req SyncRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if req.LastSyncTimestamp != nil {
		t.Errorf("LastSyncTimestamp = %v, want nil", req.LastSyncTimestamp)
	}

	b := req.ClientChanges.Bookmarks[0]
	if folders, ok := b.Desired(RelationFolders); !ok || len(folders) != 0 {
		t.Errorf("Desired(folders) = (%v, %v), want empty set present", folders, ok)
	}
	if _, ok := b.Desired(RelationTags); ok {
		t.Error("Desired(tags) should be absent")
	}

	if f := req.ClientChanges.Folders[0]; !f.ParentID.Set || f.ParentID.Value != nil {
		t.Errorf("explicit null parentId = %+v, want Set with nil value", f.ParentID)
	}
	if f := req.ClientChanges.Folders[1]; f.ParentID.Set {
		t.Errorf("absent parentId = %+v, want unset", f.ParentID)
	}

	all := req.ClientChanges.All()
	if len(all) != 3 || all[0].Kind() != KindBookmark || all[2].Kind() != KindFolder {
		t.Errorf("All() order = %v", all)
	}
}

func TestDeletedIDsNeverNull(t *testing.T) {
	data, err := json.Marshal(NewDeletedIDs())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"bookmarks":[],"folders":[],"tags":[],"collections":[]}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestDeletedIDsAdd(t *testing.T) {
	d := NewDeletedIDs()
	d.Add(KindFolder, "f1", "f2")
	d.Add(KindTag, "t1")
	d.Add(Kind("widget"), "w1")

	if got := d.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	if len(d.Folders) != 2 || d.Tags[0] != "t1" {
		t.Errorf("Add() = %+v", d)
	}
}

func TestConflictEncoding(t *testing.T) {
	change := &TagChange{ChangeMeta: ChangeMeta{ID: "t1"}, Name: ptr("dup")}
	c := ErrorConflict(change, UniquenessViolation(KindTag, "t1", "dup"))

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	if strings.Contains(s, "serverRecord") {
		t.Errorf("error conflict should omit serverRecord: %s", s)
	}
	if !strings.Contains(s, `"code":"uniqueness_violation"`) {
		t.Errorf("missing code in %s", s)
	}
}

func ptr[T any](v T) *T { return &v }
