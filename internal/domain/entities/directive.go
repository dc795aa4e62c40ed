package entities

import (
	"errors"
	"fmt"
	"strings"

	"fasterdata-tuning/pkg/utils"
)

// Scope는 튜닝 지시가 어떤 도구로 적용되는지를 나타냅니다
type Scope string

const (
	ScopeSysctl   Scope = "SYSCTL"
	ScopeNICRing  Scope = "NIC_RING"
	ScopeNICPause Scope = "NIC_PAUSE"
	ScopeTCPacing Scope = "TC_PACING"
)

// ParseScope는 카탈로그 문자열을 Scope로 변환합니다 (대소문자 무시)
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToUpper(strings.TrimSpace(s))) {
	case ScopeSysctl:
		return ScopeSysctl, nil
	case ScopeNICRing:
		return ScopeNICRing, nil
	case ScopeNICPause:
		return ScopeNICPause, nil
	case ScopeTCPacing:
		return ScopeTCPacing, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, s)
}

// RequiresInterface는 해당 scope가 대상 인터페이스를 필요로 하는지 반환합니다
func (s Scope) RequiresInterface() bool {
	return s != ScopeSysctl
}

var (
	ErrUnknownScope        = errors.New("알 수 없는 scope")
	ErrEmptyKey            = errors.New("키가 비어있음")
	ErrEmptyDesiredValue   = errors.New("목표 값이 비어있음")
	ErrMissingInterface    = errors.New("대상 인터페이스가 필요함")
	ErrUnexpectedInterface = errors.New("sysctl 지시에는 인터페이스를 지정할 수 없음")
	ErrInvalidKey          = errors.New("scope에서 지원하지 않는 키")
)

// 각 scope에서 허용하는 키
var (
	ringKeys   = map[string]bool{"rx": true, "tx": true, "rx-mini": true, "rx-jumbo": true}
	pauseKeys  = map[string]bool{"autoneg": true, "rx": true, "tx": true}
	pacingKeys = map[string]bool{"maxrate": true}
)

// TuningDirective는 하나의 튜닝 지시입니다. 생성 후에는 변경할 수 없습니다.
type TuningDirective struct {
	scope           Scope
	key             string
	desiredValue    string
	targetInterface string
	verifyOnly      bool
}

// NewTuningDirective는 검증된 TuningDirective를 생성합니다
func NewTuningDirective(scope Scope, key, desiredValue, targetInterface string) (TuningDirective, error) {
	d := TuningDirective{
		scope:           scope,
		key:             strings.TrimSpace(key),
		desiredValue:    strings.TrimSpace(desiredValue),
		targetInterface: strings.TrimSpace(targetInterface),
	}
	if parsed, err := ParseScope(string(scope)); err == nil {
		d.scope = parsed
	}
	if err := d.Validate(); err != nil {
		return TuningDirective{}, err
	}
	return d, nil
}

// AsVerifyOnly는 확인만 하고 변경하지 않는 복사본을 반환합니다
func (d TuningDirective) AsVerifyOnly() TuningDirective {
	d.verifyOnly = true
	return d
}

func (d TuningDirective) Scope() Scope            { return d.scope }
func (d TuningDirective) Key() string             { return d.key }
func (d TuningDirective) DesiredValue() string    { return d.desiredValue }
func (d TuningDirective) TargetInterface() string { return d.targetInterface }
func (d TuningDirective) VerifyOnly() bool        { return d.verifyOnly }

// String은 로그용 표현을 반환합니다 (예: NIC_RING[eth0].rx=max)
func (d TuningDirective) String() string {
	if d.targetInterface != "" {
		return fmt.Sprintf("%s[%s].%s=%s", d.scope, d.targetInterface, d.key, d.desiredValue)
	}
	return fmt.Sprintf("%s.%s=%s", d.scope, d.key, d.desiredValue)
}

// Validate는 TuningDirective의 유효성을 검증합니다
func (d TuningDirective) Validate() error {
	if _, err := ParseScope(string(d.scope)); err != nil {
		return err
	}
	if d.key == "" {
		return ErrEmptyKey
	}
	if d.desiredValue == "" {
		return ErrEmptyDesiredValue
	}

	if !d.scope.RequiresInterface() {
		if d.targetInterface != "" {
			return ErrUnexpectedInterface
		}
		if err := utils.ValidateSysctlKey(d.key); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return nil
	}

	if d.targetInterface == "" {
		return ErrMissingInterface
	}
	if err := utils.ValidateInterfaceName(d.targetInterface); err != nil {
		return err
	}

	var allowed map[string]bool
	switch d.scope {
	case ScopeNICRing:
		allowed = ringKeys
	case ScopeNICPause:
		allowed = pauseKeys
	case ScopeTCPacing:
		allowed = pacingKeys
	}
	if !allowed[d.key] {
		return fmt.Errorf("%w: %s %s", ErrInvalidKey, d.scope, d.key)
	}
	return nil
}
