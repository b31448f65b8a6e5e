package review

import "fmt"

// FeedbackAction is a reviewer's verdict on one atom of a block.
type FeedbackAction string

const (
	FeedbackKeep   FeedbackAction = "keep"
	FeedbackDelete FeedbackAction = "delete"
	FeedbackRegen  FeedbackAction = "regen"
	FeedbackNote   FeedbackAction = "note"
)

// FeedbackCorrection maps an atom verdict to the correction recorded for it.
func FeedbackCorrection(blockID, hourID, atomID string, action FeedbackAction, note string) (CorrectionInput, error) {
	in := CorrectionInput{
		BlockID:   blockID,
		HourID:    hourID,
		AssetType: AssetTypeImage,
		AssetName: atomID,
		Priority:  PriorityMedium,
		Status:    StatusPending,
	}
	switch action {
	case FeedbackDelete:
		in.Issue = "Marked for deletion"
		in.Priority = PriorityHigh
	case FeedbackRegen:
		in.Issue = "Marked for regeneration"
	case FeedbackKeep, FeedbackNote:
		in.Issue = note
		if in.Issue == "" {
			in.Issue = "Reviewed"
		}
	default:
		return CorrectionInput{}, fmt.Errorf("unknown feedback action %q", action)
	}
	return in, nil
}
