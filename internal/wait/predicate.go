package wait

// Report is the interpretation of one raw status payload.
type Report struct {
	State    string
	Outcome  string
	Terminal bool
	Success  bool
}

// Predicate interprets a raw status payload.
type Predicate func(raw map[string]any) Report

// PredicateFor returns the built-in predicate for kind.
func PredicateFor(kind Kind) Predicate {
	switch kind {
	case KindScenario:
		return ScenarioPredicate
	case KindFuture:
		return FuturePredicate
	default:
		return JobPredicate
	}
}

// JobPredicate reads baseStatus.state, falling back to a flat state field.
// DONE, FAILED and ABORTED are terminal; only DONE is a success.
func JobPredicate(raw map[string]any) Report {
	state := StatusUnknown
	base, _ := raw["baseStatus"].(map[string]any)
	if s, ok := base["state"].(string); ok && s != "" {
		state = s
	} else if s, ok := raw["state"].(string); ok && s != "" {
		state = s
	}

	switch state {
	case StatusDone, StatusFailed, StatusAborted:
		return Report{State: state, Terminal: true, Success: state == StatusDone}
	}
	return Report{State: state}
}

// ScenarioPredicate is terminal once scenarioRun.result.outcome is set.
// The run is then DONE and succeeds only with outcome SUCCESS.
func ScenarioPredicate(raw map[string]any) Report {
	run, _ := raw["scenarioRun"].(map[string]any)
	result, _ := run["result"].(map[string]any)
	outcome, ok := result["outcome"]
	if !ok || outcome == nil {
		return Report{State: StatusRunning}
	}
	text, _ := outcome.(string)
	return Report{
		State:    StatusDone,
		Outcome:  text,
		Terminal: true,
		Success:  text == "SUCCESS",
	}
}

// FuturePredicate handles DSS futures: a result means DONE, a dead future
// without a result is ABORTED or FAILED.
func FuturePredicate(raw map[string]any) Report {
	if hasResult, _ := raw["hasResult"].(bool); hasResult {
		return Report{State: StatusDone, Terminal: true, Success: true}
	}
	alive, ok := raw["alive"].(bool)
	if !ok || alive {
		return Report{State: StatusRunning}
	}
	if aborted, _ := raw["aborted"].(bool); aborted {
		return Report{State: StatusAborted, Terminal: true}
	}
	return Report{State: StatusFailed, Terminal: true}
}
