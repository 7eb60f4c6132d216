package models

import "fmt"

// Action is a user-triggered operation offered on a request row.
type Action string

const (
	ActionView          Action = "view"
	ActionEdit          Action = "edit"
	ActionCancel        Action = "cancel"
	ActionRollback      Action = "rollback"
	ActionExport        Action = "export"
	ActionAuditTrail    Action = "audit-trail"
	ActionProcessRefund Action = "process-refund"
	ActionTrackStatus   Action = "track-status"
)

// AllowedActions returns the actions offered for a request in the given status.
// View is always offered first.
func AllowedActions(status RequestStatus) []Action {
	switch status {
	case RequestStatusPending:
		return []Action{ActionView, ActionEdit, ActionCancel}
	case RequestStatusApproved:
		return []Action{ActionView, ActionRollback, ActionCancel}
	case RequestStatusRejected:
		return []Action{ActionView, ActionRollback}
	case RequestStatusCompleted:
		return []Action{ActionView, ActionExport, ActionAuditTrail}
	case RequestStatusPartiallyCompleted:
		return []Action{ActionView, ActionProcessRefund, ActionTrackStatus}
	case RequestStatusCancelled, RequestStatusRefundProcessing:
		return []Action{ActionView}
	}
	return []Action{ActionView}
}

// Allows reports whether action is offered for status.
func Allows(status RequestStatus, action Action) bool {
	for _, allowed := range AllowedActions(status) {
		if allowed == action {
			return true
		}
	}
	return false
}

// Target returns the status an action moves a request to. The bool is false for actions that
// leave the status untouched.
func (a Action) Target() (RequestStatus, bool) {
	switch a {
	case ActionCancel:
		return RequestStatusCancelled, true
	case ActionRollback:
		return RequestStatusPending, true
	case ActionProcessRefund:
		return RequestStatusRefundProcessing, true
	case ActionView, ActionEdit, ActionExport, ActionAuditTrail, ActionTrackStatus:
		return "", false
	}
	return "", false
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionView, ActionEdit, ActionCancel, ActionRollback, ActionExport,
		ActionAuditTrail, ActionProcessRefund, ActionTrackStatus:
		return true
	}
	return false
}

// ConfirmationPrompt is the dialog shown before a status changing action is applied.
type ConfirmationPrompt struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Prompt returns the confirmation dialog for a status changing action on r.
func (a Action) Prompt(r PurchaseRequest) ConfirmationPrompt {
	switch a {
	case ActionCancel:
		return ConfirmationPrompt{
			Title:   "Cancel Request",
			Message: fmt.Sprintf("Are you sure you want to CANCEL the purchase request for %q?", r.ItemName),
		}
	case ActionRollback:
		return ConfirmationPrompt{
			Title:   "Rollback Request",
			Message: fmt.Sprintf("Are you sure you want to ROLLBACK the purchase request for %q to pending status?", r.ItemName),
		}
	case ActionProcessRefund:
		return ConfirmationPrompt{
			Title:   "Process Refund",
			Message: fmt.Sprintf("Are you sure you want to PROCESS REFUND for the purchase request %q? This action will initiate the refund process.", r.ItemName),
		}
	}
	return ConfirmationPrompt{Title: "Confirm", Message: fmt.Sprintf("Apply %s to %s?", a, r.Reference())}
}

// Outcome returns the success notification sent once a status changing action is applied.
func (a Action) Outcome() (title, message string) {
	switch a {
	case ActionCancel:
		return "Request Cancelled", "Purchase request has been cancelled successfully."
	case ActionRollback:
		return "Request Rolled Back", "Purchase request has been rolled back to pending status."
	case ActionProcessRefund:
		return "Refund Processing", "Refund process has been initiated successfully."
	}
	return "Done", fmt.Sprintf("%s applied.", a)
}

// FormatReference renders the PR-00N reference for an id.
func FormatReference(id int64) string {
	return fmt.Sprintf("PR-%03d", id)
}
