package entities

// Decision은 현재 값과 목표 값을 비교한 결과입니다
type Decision int

const (
	DecisionNoOp Decision = iota
	DecisionChange
)

// String은 Decision의 문자열 표현을 반환합니다
func (d Decision) String() string {
	if d == DecisionChange {
		return "CHANGE"
	}
	return "NO_OP"
}

// ApplyResult는 한 번의 실행에서 지시 하나를 처리한 결과입니다.
// 생성자로만 만들어지며 이후 변경되지 않습니다.
type ApplyResult struct {
	directive     TuningDirective
	decision      Decision
	previousValue string
	hasPrevious   bool
	currentValue  string
	applied       bool
	dryRun        bool
	err           error
}

// NewNoOpResult는 이미 목표 값인 지시의 결과를 생성합니다
func NewNoOpResult(d TuningDirective, current string, dryRun bool) ApplyResult {
	return ApplyResult{
		directive:     d,
		decision:      DecisionNoOp,
		previousValue: current,
		hasPrevious:   true,
		currentValue:  current,
		dryRun:        dryRun,
	}
}

// NewPlannedResult는 dry-run 또는 verify-only로 변경이 필요하다고 판단만 한 결과를 생성합니다
func NewPlannedResult(d TuningDirective, current string, dryRun bool) ApplyResult {
	return ApplyResult{
		directive:     d,
		decision:      DecisionChange,
		previousValue: current,
		hasPrevious:   true,
		currentValue:  current,
		dryRun:        dryRun,
	}
}

// NewAppliedResult는 적용 후 확인까지 끝난 결과를 생성합니다
func NewAppliedResult(d TuningDirective, previous, current string) ApplyResult {
	return ApplyResult{
		directive:     d,
		decision:      DecisionChange,
		previousValue: previous,
		hasPrevious:   true,
		currentValue:  current,
		applied:       true,
	}
}

// NewFailedResult는 실패한 결과를 생성합니다. previous가 nil이면 현재 값을 읽지 못한 경우입니다.
func NewFailedResult(d TuningDirective, decision Decision, previous *string, err error) ApplyResult {
	r := ApplyResult{
		directive: d,
		decision:  decision,
		err:       err,
	}
	if previous != nil {
		r.previousValue = *previous
		r.hasPrevious = true
	}
	return r
}

func (r ApplyResult) Directive() TuningDirective { return r.directive }
func (r ApplyResult) Decision() Decision         { return r.decision }
func (r ApplyResult) Applied() bool              { return r.applied }
func (r ApplyResult) DryRun() bool               { return r.dryRun }
func (r ApplyResult) Err() error                 { return r.err }
func (r ApplyResult) CurrentValue() string       { return r.currentValue }

// PreviousValue는 변경 전 값을 반환합니다. 읽지 못했으면 false를 반환합니다.
func (r ApplyResult) PreviousValue() (string, bool) {
	return r.previousValue, r.hasPrevious
}

// Failed는 결과에 에러가 있는지 확인합니다
func (r ApplyResult) Failed() bool {
	return r.err != nil
}

// VerifyMismatch는 verify-only 지시가 목표 값과 다름을 나타냅니다
func (r ApplyResult) VerifyMismatch() bool {
	return r.err == nil && r.directive.VerifyOnly() && r.decision == DecisionChange
}
