package domain

import (
	"errors"
	"testing"
)

func TestBookmarkChangeBuild(t *testing.T) {
	tests := []struct {
		name    string
		change  *BookmarkChange
		wantErr error
	}{
		{
			name:   "valid",
			change: &BookmarkChange{ChangeMeta: ChangeMeta{ID: "b1"}, URL: ptr(" https://go.dev "), Title: ptr("Go")},
		},
		{
			name:    "missing url",
			change:  &BookmarkChange{ChangeMeta: ChangeMeta{ID: "b2"}, Title: ptr("no url")},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "blank url",
			change:  &BookmarkChange{ChangeMeta: ChangeMeta{ID: "b3"}, URL: ptr("   ")},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := tt.change.Build("u1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			b := rec.(*Bookmark)
			if b.URL != "https://go.dev" || b.OwnerID != "u1" || b.ID != "b1" {
				t.Errorf("Build() = %+v", b)
			}
		})
	}
}

func TestFolderChangeApplyParent(t *testing.T) {
	parent := "p1"
	tests := []struct {
		name   string
		change FolderChange
		want   *string
	}{
		{"absent keeps parent", FolderChange{}, &parent},
		{"null moves to root", FolderChange{ParentID: Null[string]()}, nil},
		{"empty string moves to root", FolderChange{ParentID: Some("")}, nil},
		{"new parent", FolderChange{ParentID: Some("p2")}, ptr("p2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Folder{Name: "Docs", ParentID: &parent}
			if err := tt.change.Apply(f); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if !SameParent(f.ParentID, tt.want) {
				t.Errorf("ParentID = %v, want %v", f.ParentID, tt.want)
			}
			if f.Name != "Docs" {
				t.Errorf("Name = %q, want unchanged", f.Name)
			}
		})
	}
}

func TestApplyRejectsEmptyName(t *testing.T) {
	change := &TagChange{ChangeMeta: ChangeMeta{ID: "t1"}, Name: ptr("  ")}
	if err := change.Apply(&Tag{Name: "old"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Apply() error = %v, want invalid input", err)
	}
}

func TestApplyKindMismatch(t *testing.T) {
	change := &CollectionChange{ChangeMeta: ChangeMeta{ID: "c1"}, Name: ptr("x")}
	if err := change.Apply(&Tag{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Apply() error = %v, want invalid input", err)
	}
}

func TestCollectionChangeApply(t *testing.T) {
	col := &Collection{Name: "Reading", Description: "keep"}
	change := &CollectionChange{IsPublic: ptr(true), Thumbnail: ptr("t.png")}
	if err := change.Apply(col); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !col.IsPublic || col.Thumbnail != "t.png" || col.Description != "keep" || col.Name != "Reading" {
		t.Errorf("Apply() = %+v", col)
	}
}
