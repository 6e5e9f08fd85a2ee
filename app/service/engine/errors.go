package engine

import "github.com/samber/oops"

const codeCollaboratorUnavailable = "collaborator_unavailable"

// collaboratorUnavailable marks an I/O failure during an action the user
// expects to have concrete effect. These surface to the caller instead of
// degrading to clarification.
func collaboratorUnavailable(action Action, err error) error {
	return oops.
		Code(codeCollaboratorUnavailable).
		With("action", string(action)).
		Wrapf(err, "%s action failed", action)
}

// IsCollaboratorUnavailable reports whether err is a surfaced collaborator
// failure, and for which action.
func IsCollaboratorUnavailable(err error) (Action, bool) {
	o, ok := oops.AsOops(err)
	if !ok || o.Code() != codeCollaboratorUnavailable {
		return "", false
	}

	if a, ok := o.Context()["action"].(string); ok {
		return Action(a), true
	}

	return "", true
}
