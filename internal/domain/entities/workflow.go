package entities

// WorkflowState is the lifecycle stage of a requirement version.
type WorkflowState string

const (
	WorkflowParsed   WorkflowState = "parsed"
	WorkflowProposed WorkflowState = "proposed"
	WorkflowReview   WorkflowState = "review"
	WorkflowActive   WorkflowState = "active"
	WorkflowRejected WorkflowState = "rejected"
	WorkflowRemoved  WorkflowState = "removed"
)

// IsValid checks if a state is one of the known workflow states.
func (s WorkflowState) IsValid() bool {
	_, ok := workflowTransitions[s]
	return ok
}

// workflowTransitions is the legal transition table. Parsed requirements
// can only be accepted into Proposed; Removed can only be restored.
var workflowTransitions = map[WorkflowState][]WorkflowState{
	WorkflowParsed:   {WorkflowProposed, WorkflowRemoved},
	WorkflowProposed: {WorkflowReview, WorkflowRemoved},
	WorkflowReview:   {WorkflowActive, WorkflowRejected, WorkflowRemoved},
	WorkflowActive:   {WorkflowReview, WorkflowRemoved},
	WorkflowRejected: {WorkflowRemoved},
	WorkflowRemoved:  {WorkflowProposed},
}

// CanTransition reports whether moving from s to the target state is legal.
// Silence-typed requirements are handled separately: once rejected they are
// fully terminal and a removed Silence cannot be restored.
func (s WorkflowState) CanTransition(to WorkflowState) bool {
	for _, t := range workflowTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Transitions returns the legal target states from s.
func (s WorkflowState) Transitions() []WorkflowState {
	targets := workflowTransitions[s]
	out := make([]WorkflowState, len(targets))
	copy(out, targets)
	return out
}
