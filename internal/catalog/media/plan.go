// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package media

import (
	"fmt"

	"github.com/ngocanhtran/bibliora/internal/platform/apperr"
)

// # Attachment Planning

// Plan is the computed difference between a book's current image set and the
// requested one. It is pure data: the coordinator applies AttachIDs and
// DetachIDs against catalog.media inside the same transaction that saves
// the Images rows, so a failed save never strands a half-flipped asset.
type Plan struct {
	// Images is the final ordered image set, cover first.
	Images []Image

	// AttachIDs are media ids to flip TEMP -> ATTACHED.
	AttachIDs []string

	// DetachIDs are media ids to release back to TEMP.
	DetachIDs []string
}

/*
BuildPlan diffs a book's current images against a requested change set.

Description: Performs no I/O. Candidate media must already be loaded by the
caller; the function only validates lifecycle state and ownership, then
computes which junction rows survive, which media get claimed and which get
released.

Rules:
  - Every id in removeIDs drops its image and queues a detach. Ids that are
    not currently attached are ignored.
  - A non-nil newCover replaces the existing cover: the old cover is queued
    for detach and the new one becomes the first image.
  - Gallery additions append after the existing gallery. An addition that is
    already attached to this book is skipped silently.
  - Candidates (cover and additions) must be TEMP, and must be owned by
    uploaderID when one is supplied. A non-TEMP candidate is a conflict:
    another entity claimed it first.

Parameters:
  - current: The book's image rows as stored, any order.
  - newCover: Replacement cover candidate, nil to keep the current cover.
  - additions: Gallery candidates, in the order they should appear.
  - removeIDs: Media ids to drop from the book.
  - uploaderID: Caller's user id, empty to skip ownership checks.

Returns:
  - Plan: Final images plus attach/detach work lists.
  - error: VALIDATION_ERROR, CONFLICT or FORBIDDEN on a bad candidate.
*/
func BuildPlan(current []Image, newCover *Media, additions []*Media, removeIDs []string, uploaderID string) (Plan, error) {
	removing := make(map[string]bool, len(removeIDs))
	for _, id := range removeIDs {
		removing[id] = true
	}

	plan := Plan{
		Images:    make([]Image, 0, len(current)+len(additions)+1),
		AttachIDs: make([]string, 0, len(additions)+1),
		DetachIDs: make([]string, 0, len(removeIDs)+1),
	}

	var cover *Image
	present := make(map[string]bool, len(current))

	for _, image := range current {
		if removing[image.MediaID] {
			plan.DetachIDs = append(plan.DetachIDs, image.MediaID)
			continue
		}

		present[image.MediaID] = true

		if image.Kind == KindCover {
			kept := image
			cover = &kept
			continue
		}

		plan.Images = append(plan.Images, image)
	}

	if newCover != nil {
		if err := checkCandidate(newCover, uploaderID); err != nil {
			return Plan{}, err
		}

		// The old cover makes way even when it was not explicitly removed.
		if cover != nil {
			plan.DetachIDs = append(plan.DetachIDs, cover.MediaID)
		}

		cover = &Image{MediaID: newCover.ID, URL: newCover.URL, Kind: KindCover}
		plan.AttachIDs = append(plan.AttachIDs, newCover.ID)
	}

	for _, addition := range additions {
		if addition == nil {
			return Plan{}, apperr.ValidationError("gallery media is missing")
		}
		if present[addition.ID] || (cover != nil && cover.MediaID == addition.ID) {
			continue
		}

		if err := checkCandidate(addition, uploaderID); err != nil {
			return Plan{}, err
		}

		plan.Images = append(plan.Images, Image{MediaID: addition.ID, URL: addition.URL, Kind: KindGallery})
		present[addition.ID] = true
		plan.AttachIDs = append(plan.AttachIDs, addition.ID)
	}

	// Renumber with the cover pinned first.
	if cover != nil {
		plan.Images = append([]Image{*cover}, plan.Images...)
	}
	for index := range plan.Images {
		plan.Images[index].Position = index
	}

	return plan, nil
}

// checkCandidate validates that a media asset can be claimed by the caller.
func checkCandidate(candidate *Media, uploaderID string) error {
	if candidate.Type != TypeImage {
		return apperr.ValidationError(fmt.Sprintf("media %s is not an image", candidate.ID))
	}
	if !candidate.IsTemp() {
		return apperr.Conflict(fmt.Sprintf("media %s is already attached", candidate.ID))
	}
	if uploaderID != "" && !candidate.OwnedBy(uploaderID) {
		return apperr.Forbidden("media belongs to another user")
	}
	return nil
}
