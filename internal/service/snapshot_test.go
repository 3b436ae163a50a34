package service

import (
	"testing"

	"pathshala/internal/model"
)

func catalogLesson(id, name string, contents ...model.Content) model.Lesson {
	return model.Lesson{
		LessonID: id,
		Name:     name,
		Type:     "lecture",
		Contents: contents,
	}
}

func catalogContent(id, name string) model.Content {
	return model.Content{
		ContentID: id,
		Name:      name,
		Type:      "video",
		Link:      "https://cdn.example.com/" + id,
	}
}

func TestSyncLessonsSeedsLocked(t *testing.T) {
	current := model.LessonList{
		catalogLesson("l1", "Algebra", catalogContent("c1", "Intro")),
		catalogLesson("l2", "Geometry"),
	}

	merged, changed := syncLessons(current, nil)
	if !changed {
		t.Fatal("expected changed=true when snapshot is empty")
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(merged))
	}
	for _, lp := range merged {
		if lp.Status != model.StatusLocked {
			t.Fatalf("lesson %s: expected status %q, got %q", lp.LessonID, model.StatusLocked, lp.Status)
		}
		for _, cp := range lp.Contents {
			if cp.Status != model.StatusLocked {
				t.Fatalf("content %s: expected status %q, got %q", cp.ContentID, model.StatusLocked, cp.Status)
			}
		}
	}
}

func TestSyncLessonsUnchangedIsStable(t *testing.T) {
	current := model.LessonList{
		catalogLesson("l1", "Algebra", catalogContent("c1", "Intro")),
		catalogLesson("l2", "Geometry"),
	}
	snapshot, _ := syncLessons(current, nil)

	merged, changed := syncLessons(current, snapshot)
	if changed {
		t.Fatal("expected changed=false on an up-to-date snapshot")
	}
	if len(merged) != len(snapshot) {
		t.Fatalf("expected %d lessons, got %d", len(snapshot), len(merged))
	}
}

func TestSyncLessonsPreservesStatusOnUpdate(t *testing.T) {
	current := model.LessonList{
		catalogLesson("l1", "Algebra", catalogContent("c1", "Intro")),
	}
	snapshot, _ := syncLessons(current, nil)
	snapshot[0].Status = "done"
	snapshot[0].Contents[0].Status = "done"

	// rename the lesson and its content in the catalog
	current[0].Name = "Algebra II"
	current[0].Contents[0].Name = "Intro (updated)"

	merged, changed := syncLessons(current, snapshot)
	if !changed {
		t.Fatal("expected changed=true after a catalog rename")
	}
	if merged[0].Name != "Algebra II" {
		t.Fatalf("expected lesson name to follow catalog, got %q", merged[0].Name)
	}
	if merged[0].Status != "done" {
		t.Fatalf("expected lesson status to survive, got %q", merged[0].Status)
	}
	if merged[0].Contents[0].Name != "Intro (updated)" {
		t.Fatalf("expected content name to follow catalog, got %q", merged[0].Contents[0].Name)
	}
	if merged[0].Contents[0].Status != "done" {
		t.Fatalf("expected content status to survive, got %q", merged[0].Contents[0].Status)
	}
}

func TestSyncLessonsAddsNewLessonLocked(t *testing.T) {
	original := model.LessonList{catalogLesson("l1", "Algebra")}
	snapshot, _ := syncLessons(original, nil)
	snapshot[0].Status = "done"

	current := model.LessonList{
		catalogLesson("l1", "Algebra"),
		catalogLesson("l2", "Geometry"),
	}

	merged, changed := syncLessons(current, snapshot)
	if !changed {
		t.Fatal("expected changed=true after a lesson was added")
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(merged))
	}
	if merged[0].Status != "done" {
		t.Fatalf("expected existing lesson status to survive, got %q", merged[0].Status)
	}
	if merged[1].Status != model.StatusLocked {
		t.Fatalf("expected new lesson to start %q, got %q", model.StatusLocked, merged[1].Status)
	}
}

func TestSyncLessonsDropsRemovedLesson(t *testing.T) {
	original := model.LessonList{
		catalogLesson("l1", "Algebra"),
		catalogLesson("l2", "Geometry"),
	}
	snapshot, _ := syncLessons(original, nil)

	current := model.LessonList{catalogLesson("l2", "Geometry")}

	merged, changed := syncLessons(current, snapshot)
	if !changed {
		t.Fatal("expected changed=true after a lesson was removed")
	}
	if len(merged) != 1 {
		t.Fatalf("expected 1 lesson, got %d", len(merged))
	}
	if merged[0].LessonID != "l2" {
		t.Fatalf("expected remaining lesson l2, got %s", merged[0].LessonID)
	}
}

func TestSyncLessonsReorderFollowsCatalog(t *testing.T) {
	original := model.LessonList{
		catalogLesson("l1", "Algebra"),
		catalogLesson("l2", "Geometry"),
	}
	snapshot, _ := syncLessons(original, nil)
	snapshot[0].Status = "done"

	current := model.LessonList{
		catalogLesson("l2", "Geometry"),
		catalogLesson("l1", "Algebra"),
	}

	merged, changed := syncLessons(current, snapshot)
	if !changed {
		t.Fatal("expected changed=true after a reorder")
	}
	if merged[0].LessonID != "l2" || merged[1].LessonID != "l1" {
		t.Fatalf("expected catalog order l2,l1, got %s,%s", merged[0].LessonID, merged[1].LessonID)
	}
	if merged[1].Status != "done" {
		t.Fatalf("expected status to travel with the lesson, got %q", merged[1].Status)
	}
}

func TestSyncContentsAddAndRemove(t *testing.T) {
	original := []model.Content{
		catalogContent("c1", "Intro"),
		catalogContent("c2", "Deep dive"),
	}
	snapshot, _ := syncContents(original, nil)
	snapshot[1].Status = "done"

	current := []model.Content{
		catalogContent("c2", "Deep dive"),
		catalogContent("c3", "Quiz"),
	}

	merged, changed := syncContents(current, snapshot)
	if !changed {
		t.Fatal("expected changed=true after add+remove")
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(merged))
	}
	if merged[0].ContentID != "c2" || merged[0].Status != "done" {
		t.Fatalf("expected c2 with status done, got %s/%s", merged[0].ContentID, merged[0].Status)
	}
	if merged[1].ContentID != "c3" || merged[1].Status != model.StatusLocked {
		t.Fatalf("expected locked c3, got %s/%s", merged[1].ContentID, merged[1].Status)
	}
}

func TestSyncMaterialsOrderInsensitive(t *testing.T) {
	merged, changed := syncMaterials([]string{"m1", "m2"}, []string{"m2", "m1"})
	if changed {
		t.Fatal("expected changed=false for the same set in a different order")
	}
	if merged[0] != "m2" || merged[1] != "m1" {
		t.Fatal("expected the stored snapshot to be kept as-is when the sets match")
	}
}

func TestSyncMaterialsReplacesOnDiff(t *testing.T) {
	merged, changed := syncMaterials([]string{"m1", "m3"}, []string{"m1", "m2"})
	if !changed {
		t.Fatal("expected changed=true when the sets differ")
	}
	if len(merged) != 2 || merged[0] != "m1" || merged[1] != "m3" {
		t.Fatalf("expected catalog refs m1,m3, got %v", merged)
	}
}

func TestSameIDSetDuplicates(t *testing.T) {
	if sameIDSet([]string{"m1", "m1"}, []string{"m1", "m2"}) {
		t.Fatal("expected duplicate-aware comparison to report a difference")
	}
	if !sameIDSet([]string{"m1", "m1"}, []string{"m1", "m1"}) {
		t.Fatal("expected equal multisets to match")
	}
}
