package service

import "pathshala/internal/model"

// The snapshot merge reconciles a student's progress snapshot with the
// current catalog definition of the course. Membership and ordering are
// driven by the catalog; per-student status fields are driven by the
// snapshot. Every function reports whether the merged result differs from
// the stored snapshot, so callers persist only on real change.

// syncLessons merges the current course lessons into the snapshot, keyed by
// lesson identity.
func syncLessons(current model.LessonList, snapshot model.ProgressList) (model.ProgressList, bool) {
	existing := make(map[string]model.LessonProgress, len(snapshot))
	for _, lp := range snapshot {
		existing[lp.LessonID] = lp
	}

	merged := make(model.ProgressList, 0, len(current))
	changed := len(current) != len(snapshot)

	for i, lesson := range current {
		prev, ok := existing[lesson.LessonID]
		if !ok {
			// new lesson: insert fresh, fully locked
			merged = append(merged, lockedLesson(lesson))
			changed = true
			continue
		}

		next := prev
		if prev.Name != lesson.Name ||
			prev.Description != lesson.Description ||
			prev.Type != lesson.Type ||
			prev.RequiredForNext != lesson.RequiredForNext {
			changed = true
		}
		next.Name = lesson.Name
		next.Description = lesson.Description
		next.Type = lesson.Type
		next.RequiredForNext = lesson.RequiredForNext

		contents, contentsChanged := syncContents(lesson.Contents, prev.Contents)
		next.Contents = contents
		if contentsChanged {
			changed = true
		}

		// catalog order wins; a reordered lesson is a change even when every
		// field survived
		if i >= len(snapshot) || snapshot[i].LessonID != lesson.LessonID {
			changed = true
		}

		merged = append(merged, next)
	}

	return merged, changed
}

// syncContents merges the current lesson contents into the snapshot contents,
// keyed by content identity.
func syncContents(current []model.Content, snapshot []model.ContentProgress) ([]model.ContentProgress, bool) {
	existing := make(map[string]model.ContentProgress, len(snapshot))
	for _, cp := range snapshot {
		existing[cp.ContentID] = cp
	}

	merged := make([]model.ContentProgress, 0, len(current))
	changed := len(current) != len(snapshot)

	for i, content := range current {
		prev, ok := existing[content.ContentID]
		if !ok {
			merged = append(merged, lockedContent(content))
			changed = true
			continue
		}

		next := prev
		if prev.Name != content.Name ||
			prev.Type != content.Type ||
			prev.Link != content.Link ||
			prev.Description != content.Description ||
			prev.RequiredForNext != content.RequiredForNext {
			changed = true
		}
		next.Name = content.Name
		next.Type = content.Type
		next.Link = content.Link
		next.Description = content.Description
		next.RequiredForNext = content.RequiredForNext

		if i >= len(snapshot) || snapshot[i].ContentID != content.ContentID {
			changed = true
		}

		merged = append(merged, next)
	}

	return merged, changed
}

// syncMaterials replaces the snapshot's material refs with the course's when
// the two differ as sets. Order alone never triggers an update.
func syncMaterials(current, snapshot []string) ([]string, bool) {
	if sameIDSet(current, snapshot) {
		return snapshot, false
	}
	return current, true
}

func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, id := range a {
		counts[id]++
	}
	for _, id := range b {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}

func lockedLesson(l model.Lesson) model.LessonProgress {
	contents := make([]model.ContentProgress, 0, len(l.Contents))
	for _, c := range l.Contents {
		contents = append(contents, lockedContent(c))
	}
	return model.LessonProgress{
		LessonID:        l.LessonID,
		Name:            l.Name,
		Description:     l.Description,
		Type:            l.Type,
		RequiredForNext: l.RequiredForNext,
		Status:          model.StatusLocked,
		Contents:        contents,
	}
}

func lockedContent(c model.Content) model.ContentProgress {
	return model.ContentProgress{
		ContentID:       c.ContentID,
		Name:            c.Name,
		Type:            c.Type,
		Link:            c.Link,
		Description:     c.Description,
		RequiredForNext: c.RequiredForNext,
		Status:          model.StatusLocked,
	}
}
