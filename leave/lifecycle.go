/*
lifecycle.go - Request state machine

PURPOSE:
  The single place that decides which status changes are legal. Service
  code never compares statuses directly; it asks Transition (regular
  actions) or Override (privileged status edits) for the next state.

STATES:
  pending (initial) -> approved | rejected | cancelled

REGULAR TRANSITIONS:
  approve:  pending -> approved
  reject:   pending -> rejected
  cancel:   pending | approved | rejected -> cancelled
  edit:     pending -> pending (detail changes only)

STATUS OVERRIDE (privileged edit carrying a status):
  any state -> any other terminal state. The returned action tells the
  caller which side effects to run (debit for approve, optional refund
  for cancel, none for reject).

SEE ALSO:
  - service.go: runs the side effects for each action
*/
package leave

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
	ActionEdit    Action = "edit"
)

// transitions is the regular transition table: from -> action -> to.
var transitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusRejected,
		ActionCancel:  StatusCancelled,
		ActionEdit:    StatusPending,
	},
	StatusApproved: {
		ActionCancel: StatusCancelled,
	},
	StatusRejected: {
		ActionCancel: StatusCancelled,
	},
	StatusCancelled: {},
}

// actionFor maps a target status to the action whose side effects apply.
var actionFor = map[Status]Action{
	StatusApproved:  ActionApprove,
	StatusRejected:  ActionReject,
	StatusCancelled: ActionCancel,
}

// Transition returns the state reached by applying action to from.
func Transition(from Status, action Action) (Status, error) {
	to, ok := transitions[from][action]
	if !ok {
		return from, &InvalidTransitionError{From: from, Attempted: action}
	}
	return to, nil
}

// Override resolves a privileged status edit. Moving back to pending and
// setting the status a request already has are refused.
func Override(from, to Status) (Action, error) {
	action, ok := actionFor[to]
	if !ok {
		return ActionEdit, &InvalidTransitionError{From: from, Attempted: ActionEdit}
	}
	if from == to {
		return action, &InvalidTransitionError{From: from, Attempted: action}
	}
	return action, nil
}
