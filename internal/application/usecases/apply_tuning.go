package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fasterdata-tuning/internal/domain/entities"
	"fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/internal/domain/interfaces"
	"fasterdata-tuning/internal/infrastructure/metrics"
	"fasterdata-tuning/pkg/utils"

	"github.com/sirupsen/logrus"
)

// 프로세스 종료 코드
const (
	ExitOK              = 0
	ExitDirectiveFailed = 1
	ExitFatal           = 2
)

// 메트릭 outcome 라벨
const (
	outcomeApplied        = "applied"
	outcomeNoOp           = "no_op"
	outcomePlanned        = "planned"
	outcomeVerifyMismatch = "verify_mismatch"
	outcomeFailed         = "failed"
)

// ApplyTuningUseCase는 카탈로그의 지시를 순서대로 조회/비교/적용/확인하는 유스케이스입니다
type ApplyTuningUseCase struct {
	handlers      interfaces.HandlerRegistry
	confirmConfig utils.RetryConfig
	clock         interfaces.Clock
	logger        *logrus.Logger
}

// NewApplyTuningUseCase는 새로운 ApplyTuningUseCase를 생성합니다
func NewApplyTuningUseCase(
	handlers interfaces.HandlerRegistry,
	confirmConfig utils.RetryConfig,
	clock interfaces.Clock,
	logger *logrus.Logger,
) *ApplyTuningUseCase {
	return &ApplyTuningUseCase{
		handlers:      handlers,
		confirmConfig: confirmConfig,
		clock:         clock,
		logger:        logger,
	}
}

// ApplyTuningInput은 유스케이스의 입력 파라미터입니다
type ApplyTuningInput struct {
	Catalogue entities.Catalogue
	DryRun    bool
}

// DirectiveReport는 지시 하나의 결과와 보고용 부가 정보입니다
type DirectiveReport struct {
	Result   entities.ApplyResult
	Desired  string   // 해석된 목표 값 ("max" -> 4096). 해석 전에 실패하면 원래 목표 값입니다.
	Command  []string // 실행했거나 dry-run에서 실행할 명령
	Duration time.Duration
}

// ApplyTuningOutput은 유스케이스의 출력 결과입니다
type ApplyTuningOutput struct {
	Reports       []DirectiveReport
	AppliedCount  int
	NoOpCount     int
	PlannedCount  int
	MismatchCount int
	FailedCount   int
	TotalCount    int
	DryRun        bool
	Duration      time.Duration
}

// Results는 카탈로그 순서대로 ApplyResult만 반환합니다
func (o *ApplyTuningOutput) Results() []entities.ApplyResult {
	results := make([]entities.ApplyResult, 0, len(o.Reports))
	for _, r := range o.Reports {
		results = append(results, r.Result)
	}
	return results
}

// ExitCode는 에러가 있는 결과가 하나라도 있으면 1, 아니면 0을 반환합니다
func (o *ApplyTuningOutput) ExitCode() int {
	if o.FailedCount > 0 {
		return ExitDirectiveFailed
	}
	return ExitOK
}

// Execute는 카탈로그 순서대로 모든 지시를 처리합니다. 하나가 실패해도 나머지는 계속 처리합니다.
func (uc *ApplyTuningUseCase) Execute(ctx context.Context, input ApplyTuningInput) *ApplyTuningOutput {
	started := uc.clock.Now()
	output := &ApplyTuningOutput{
		Reports:    make([]DirectiveReport, 0, input.Catalogue.Len()),
		TotalCount: input.Catalogue.Len(),
		DryRun:     input.DryRun,
	}

	uc.logger.WithFields(logrus.Fields{
		"source":     input.Catalogue.Source,
		"directives": input.Catalogue.Len(),
		"dry_run":    input.DryRun,
	}).Info("튜닝 시작")

	for _, d := range input.Catalogue.Directives {
		var report DirectiveReport
		if err := ctx.Err(); err != nil {
			// 중단된 이후의 지시는 실행하지 않고 실패로 남깁니다
			report = DirectiveReport{
				Result:  entities.NewFailedResult(d, entities.DecisionNoOp, nil, errors.NewSystemError("실행이 중단됨", err)),
				Desired: d.DesiredValue(),
			}
		} else {
			report = uc.apply(ctx, d, input.DryRun)
		}

		uc.record(report)
		output.add(report)
	}

	output.Duration = uc.clock.Now().Sub(started)

	uc.logger.WithFields(logrus.Fields{
		"total":           output.TotalCount,
		"applied":         output.AppliedCount,
		"no_op":           output.NoOpCount,
		"planned":         output.PlannedCount,
		"verify_mismatch": output.MismatchCount,
		"failed":          output.FailedCount,
		"duration":        output.Duration.String(),
	}).Info("튜닝 완료")

	return output
}

func (o *ApplyTuningOutput) add(report DirectiveReport) {
	o.Reports = append(o.Reports, report)

	r := report.Result
	switch {
	case r.Failed():
		o.FailedCount++
	case r.Applied():
		o.AppliedCount++
	case r.VerifyMismatch():
		o.MismatchCount++
	case r.Decision() == entities.DecisionChange:
		o.PlannedCount++
	default:
		o.NoOpCount++
	}
}

// ReadCurrent는 지시 대상의 현재 값을 조회합니다
func (uc *ApplyTuningUseCase) ReadCurrent(ctx context.Context, d entities.TuningDirective) (string, error) {
	handler, err := uc.handlers.HandlerFor(d.Scope())
	if err != nil {
		return "", err
	}
	return handler.ReadCurrent(ctx, d)
}

// Plan은 현재 값과 목표 값을 비교해 NO_OP인지 CHANGE인지 결정합니다
func (uc *ApplyTuningUseCase) Plan(ctx context.Context, d entities.TuningDirective) (entities.Decision, string, error) {
	handler, err := uc.handlers.HandlerFor(d.Scope())
	if err != nil {
		return entities.DecisionNoOp, "", err
	}

	current, err := handler.ReadCurrent(ctx, d)
	if err != nil {
		return entities.DecisionNoOp, "", err
	}

	desired, err := handler.ResolveDesired(ctx, d)
	if err != nil {
		return entities.DecisionNoOp, current, err
	}

	if handler.Equal(current, desired) {
		return entities.DecisionNoOp, current, nil
	}
	return entities.DecisionChange, current, nil
}

// Apply는 지시 하나를 처리합니다. dryRun이면 시스템을 변경하지 않습니다.
func (uc *ApplyTuningUseCase) Apply(ctx context.Context, d entities.TuningDirective, dryRun bool) entities.ApplyResult {
	return uc.apply(ctx, d, dryRun).Result
}

func (uc *ApplyTuningUseCase) apply(ctx context.Context, d entities.TuningDirective, dryRun bool) (report DirectiveReport) {
	started := uc.clock.Now()
	report.Desired = d.DesiredValue()
	defer func() { report.Duration = uc.clock.Now().Sub(started) }()

	log := uc.logger.WithFields(logrus.Fields{
		"scope":     d.Scope(),
		"key":       d.Key(),
		"interface": d.TargetInterface(),
		"desired":   d.DesiredValue(),
	})

	handler, err := uc.handlers.HandlerFor(d.Scope())
	if err != nil {
		log.WithError(err).Error("지시를 처리할 핸들러가 없음")
		report.Result = entities.NewFailedResult(d, entities.DecisionNoOp, nil, err)
		return report
	}

	current, err := handler.ReadCurrent(ctx, d)
	if err != nil {
		log.WithError(err).Error("현재 값 조회 실패")
		report.Result = entities.NewFailedResult(d, entities.DecisionNoOp, nil, err)
		return report
	}
	log = log.WithField("current", current)

	desired, err := handler.ResolveDesired(ctx, d)
	if err != nil {
		log.WithError(err).Error("목표 값 해석 실패")
		report.Result = entities.NewFailedResult(d, entities.DecisionNoOp, &current, err)
		return report
	}
	report.Desired = desired

	if handler.Equal(current, desired) {
		log.Debug("이미 목표 값과 같음")
		report.Result = entities.NewNoOpResult(d, current, dryRun)
		return report
	}

	report.Command = handler.CommandLine(d, desired)

	if d.VerifyOnly() {
		log.WithField("resolved", desired).Warn("확인 전용 지시가 목표 값과 다름 (변경하지 않음)")
		report.Result = entities.NewPlannedResult(d, current, dryRun)
		return report
	}

	if dryRun {
		log.WithField("command", strings.Join(report.Command, " ")).Info("dry-run: 변경 예정")
		report.Result = entities.NewPlannedResult(d, current, true)
		return report
	}

	// 수동 복구가 가능하도록 변경 전 값을 남깁니다
	log.WithFields(logrus.Fields{
		"previous": current,
		"resolved": desired,
		"command":  strings.Join(report.Command, " "),
	}).Info("값 변경")

	if err := handler.Write(ctx, d, desired); err != nil {
		err = writeFailure(d, desired, err)
		log.WithError(err).Error("값 적용 실패")
		report.Result = entities.NewFailedResult(d, entities.DecisionChange, &current, err)
		return report
	}

	confirmed, err := uc.confirm(ctx, handler, d, desired)
	if err != nil {
		log.WithError(err).Error("적용 후 확인 실패")
		report.Result = entities.NewFailedResult(d, entities.DecisionChange, &current, err)
		return report
	}

	log.WithField("confirmed", confirmed).Info("값 적용 완료")
	report.Result = entities.NewAppliedResult(d, current, confirmed)
	return report
}

// writeFailure는 도구가 실행됐지만 분류되지 않은 이유로 실패한 쓰기를 VALUE_REJECTED로 바꿉니다.
// 도구 없음, 권한, 인터페이스 없음, 타임아웃은 그대로 둡니다.
func writeFailure(d entities.TuningDirective, desired string, err error) error {
	switch errors.TypeOf(err) {
	case errors.ErrorTypeSystem, "":
		return errors.NewValueRejectedError(fmt.Sprintf("%s 값 %q 설정이 거부됨", d, desired), err)
	}
	return err
}

// confirm은 적용 후 값을 다시 읽어 목표 값과 같아질 때까지 제한된 횟수만큼 재시도합니다
func (uc *ApplyTuningUseCase) confirm(ctx context.Context, handler interfaces.SettingHandler, d entities.TuningDirective, desired string) (string, error) {
	var observed string
	err := utils.RetryWithBackoff(ctx, uc.confirmConfig, func(attempt int) error {
		value, err := handler.ReadCurrent(ctx, d)
		if err != nil {
			// 기다려도 달라지지 않는 실패는 재시도하지 않습니다
			if errors.IsInterfaceNotFoundError(err) || errors.IsToolNotFoundError(err) || errors.IsPermissionDeniedError(err) {
				return utils.Permanent(err)
			}
			return err
		}
		observed = value
		if !handler.Equal(value, desired) {
			uc.logger.WithFields(logrus.Fields{
				"directive": d.String(),
				"attempt":   attempt,
				"observed":  value,
			}).Debug("아직 목표 값이 아님")
			return fmt.Errorf("현재 값 %q", value)
		}
		return nil
	})
	if err == nil {
		return observed, nil
	}
	if ctx.Err() != nil {
		return "", errors.NewSystemError("확인 중 실행이 중단됨", err)
	}
	if observed == "" {
		return "", errors.NewReadError(fmt.Sprintf("%s 적용 후 값을 읽지 못함", d), err)
	}
	return "", errors.NewValueRejectedError(fmt.Sprintf("%s 적용 후에도 값이 %q임", d, observed), err)
}

func (uc *ApplyTuningUseCase) record(report DirectiveReport) {
	r := report.Result
	outcome := outcomeNoOp
	switch {
	case r.Failed():
		outcome = outcomeFailed
		if errType := errors.TypeOf(r.Err()); errType != "" {
			metrics.RecordError(string(errType))
		}
	case r.Applied():
		outcome = outcomeApplied
	case r.VerifyMismatch():
		outcome = outcomeVerifyMismatch
	case r.Decision() == entities.DecisionChange:
		outcome = outcomePlanned
	}
	metrics.RecordDirective(string(r.Directive().Scope()), outcome, report.Duration.Seconds())
}
