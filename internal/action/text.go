package action

import (
	"errors"

	"complaint-desk/internal/model"
)

// User-facing labels and notification texts.
const (
	UnknownErrorText = "Unknown error"

	LabelResolve    = "Resolve"
	LabelReopen     = "Reopen"
	LabelDelete     = "Delete"
	LabelUpdate     = "Update"
	LabelProcessing = "Processing..."
	LabelDeleting   = "Deleting..."
	LabelUpdating   = "Updating..."

	TitleResolve = "Mark as Resolved"
	TitleReopen  = "Reopen Issue"

	EmptyStateText = "No complaints found."

	DeletePrompt = "Are you sure you want to delete this complaint?\n\n" +
		"This action cannot be undone and will permanently remove the complaint from the system."

	msgResolved     = "Complaint resolved successfully!"
	msgReopened     = "Complaint reopened successfully!"
	msgDeleted      = "Complaint deleted successfully!"
	msgUpdated      = "Complaint updated successfully!"
	msgToggleFailed = "Error updating status: "
	msgDeleteFailed = "Error deleting complaint: "
	msgUpdateFailed = "Error updating complaint: "
	msgNetworkRetry = "Network error. Please try again."
	msgNetworkCheck = "Network error. Please check your connection and try again."
	msgTextRequired = "Please enter a complaint description."
	msgTextTooShort = "Complaint description must be at least 10 characters long."
)

// TextProblem returns the notification for a failed complaint text check.
func TextProblem(err error) string {
	if errors.Is(err, model.ErrComplaintEmpty) {
		return msgTextRequired
	}
	return msgTextTooShort
}
