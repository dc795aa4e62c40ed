package entities

import (
	"errors"
	"fmt"
	"strings"

	"fasterdata-tuning/internal/domain/constants"
)

// CatalogueSourceComputed는 호스트 정보로 계산된 카탈로그의 출처 표시입니다
const CatalogueSourceComputed = "computed"

var (
	ErrDuplicateDirective = errors.New("중복된 지시")

	// tc에는 maxrate를 없애는 쓰기가 없으므로 "none"은 확인만 할 수 있습니다
	ErrPacingNoneNotVerifyOnly = errors.New("maxrate none은 verify_only 지시여야 함")
)

// Catalogue는 순서가 있는 튜닝 지시 목록입니다
type Catalogue struct {
	Source     string
	Directives []TuningDirective
}

// Validate는 모든 지시가 유효하고 같은 대상이 두 번 나오지 않는지 검증합니다
func (c Catalogue) Validate() error {
	seen := make(map[string]int, len(c.Directives))
	for i, d := range c.Directives {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%d번째 지시 (%s): %w", i+1, d, err)
		}
		if d.Scope() == ScopeTCPacing && strings.EqualFold(d.DesiredValue(), constants.PacingNone) && !d.VerifyOnly() {
			return fmt.Errorf("%d번째 지시 (%s): %w", i+1, d, ErrPacingNoneNotVerifyOnly)
		}
		id := fmt.Sprintf("%s|%s|%s", d.Scope(), d.TargetInterface(), d.Key())
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("%w: %d번째와 %d번째 (%s)", ErrDuplicateDirective, prev+1, i+1, d)
		}
		seen[id] = i
	}
	return nil
}

// Len은 지시 개수를 반환합니다
func (c Catalogue) Len() int {
	return len(c.Directives)
}

// ByScope는 주어진 scope의 지시만 카탈로그 순서대로 반환합니다
func (c Catalogue) ByScope(scope Scope) []TuningDirective {
	var out []TuningDirective
	for _, d := range c.Directives {
		if d.Scope() == scope {
			out = append(out, d)
		}
	}
	return out
}
