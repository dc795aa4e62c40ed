package usecases

import (
	"context"
	"fmt"
	"strings"

	"fasterdata-tuning/internal/domain/constants"
	"fasterdata-tuning/internal/domain/entities"
	"fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/internal/domain/interfaces"
	"fasterdata-tuning/internal/domain/services"
	"fasterdata-tuning/pkg/utils"

	"github.com/sirupsen/logrus"
)

// PersistSysctlUseCase는 적용한 sysctl 값을 재부팅 후에도 유지되도록 sysctl 설정 파일의 관리 블록에 기록합니다
type PersistSysctlUseCase struct {
	fileSystem    interfaces.FileSystem
	backupService interfaces.BackupService
	confPath      string
	logger        *logrus.Logger
}

// NewPersistSysctlUseCase는 새로운 PersistSysctlUseCase를 생성합니다
func NewPersistSysctlUseCase(
	fs interfaces.FileSystem,
	backup interfaces.BackupService,
	confPath string,
	logger *logrus.Logger,
) *PersistSysctlUseCase {
	return &PersistSysctlUseCase{
		fileSystem:    fs,
		backupService: backup,
		confPath:      confPath,
		logger:        logger,
	}
}

// PersistSysctlInput은 유스케이스의 입력 파라미터입니다
type PersistSysctlInput struct {
	Results []entities.ApplyResult
	DryRun  bool
}

// PersistSysctlOutput은 유스케이스의 출력 결과입니다
type PersistSysctlOutput struct {
	Path       string
	Block      string
	Entries    int
	Changed    bool   // 파일 내용이 달라져야 하는지
	Written    bool   // 실제로 파일을 기록했는지
	BackupPath string // 기록 전에 만든 백업 (원본이 없었으면 빈 값)
}

// Execute는 실패하지 않은 SYSCTL 지시를 관리 블록으로 만들어 설정 파일에 반영합니다.
// 관리 블록 밖의 내용은 건드리지 않으며, 이미 같은 블록이 있으면 파일을 다시 쓰지 않습니다.
func (uc *PersistSysctlUseCase) Execute(ctx context.Context, input PersistSysctlInput) (*PersistSysctlOutput, error) {
	output := &PersistSysctlOutput{Path: uc.confPath}

	directives := persistableDirectives(input.Results)
	if len(directives) == 0 {
		uc.logger.Debug("기록할 sysctl 값이 없음")
		return output, nil
	}

	block := RenderManagedBlock(directives)
	if err := utils.ValidateSysctlBlock([]byte(block)); err != nil {
		return nil, errors.NewValidationError("sysctl 관리 블록이 유효하지 않음", err)
	}
	output.Block = block
	output.Entries = len(directives)

	var existing string
	if uc.fileSystem.Exists(uc.confPath) {
		content, err := uc.fileSystem.ReadFile(uc.confPath)
		if err != nil {
			return nil, errors.NewSystemError(fmt.Sprintf("%s 읽기 실패", uc.confPath), err)
		}
		existing = string(content)
	}

	merged, unterminated := MergeManagedBlock(existing, block)
	if unterminated {
		uc.logger.WithField("path", uc.confPath).Warn("끝 마커가 없는 관리 블록 시작 마커를 발견함, 뒤의 내용은 유지하고 새 블록을 추가함")
	}
	output.Changed = merged != existing

	log := uc.logger.WithFields(logrus.Fields{
		"path":    uc.confPath,
		"entries": output.Entries,
		"changed": output.Changed,
	})

	if !output.Changed {
		log.Info("sysctl 설정 파일이 이미 최신 상태")
		return output, nil
	}

	if input.DryRun {
		log.Info("dry-run: sysctl 설정 파일 변경 예정")
		return output, nil
	}

	backupPath, err := uc.backupService.CreateBackup(ctx, constants.SysctlBackupName, uc.confPath)
	if err != nil {
		return nil, errors.NewSystemError("sysctl 설정 파일 백업 실패", err)
	}
	output.BackupPath = backupPath

	if err := uc.fileSystem.WriteFile(uc.confPath, []byte(merged), constants.ConfigFilePermission); err != nil {
		return nil, errors.NewSystemError(fmt.Sprintf("%s 기록 실패", uc.confPath), err)
	}
	output.Written = true

	log.WithField("backup_path", backupPath).Info("sysctl 설정 파일 기록 완료")
	return output, nil
}

// persistableDirectives는 에러 없이 처리된 변경 가능한 SYSCTL 지시만 고릅니다
func persistableDirectives(results []entities.ApplyResult) []entities.TuningDirective {
	var out []entities.TuningDirective
	for _, r := range results {
		d := r.Directive()
		if d.Scope() != entities.ScopeSysctl || d.VerifyOnly() || r.Failed() {
			continue
		}
		out = append(out, d)
	}
	return out
}

// RenderManagedBlock은 지시 목록을 마커로 감싼 "key = value" 블록으로 만듭니다
func RenderManagedBlock(directives []entities.TuningDirective) string {
	var b strings.Builder
	b.WriteString(constants.ManagedBlockBegin + "\n")
	b.WriteString("# Host tuning recommendations from https://fasterdata.es.net/host-tuning/linux/\n")
	for _, d := range directives {
		fmt.Fprintf(&b, "%s = %s\n", d.Key(), services.NormalizeSysctlValue(d.DesiredValue()))
	}
	b.WriteString(constants.ManagedBlockEnd + "\n")
	return b.String()
}

// MergeManagedBlock은 existing에서 기존 관리 블록을 모두 제거하고 block을 파일 끝에 붙입니다.
// 끝 마커가 없는 시작 마커는 마커 줄만 지우고 뒤의 내용은 그대로 둡니다. 이 경우 unterminated가 true입니다.
func MergeManagedBlock(existing, block string) (merged string, unterminated bool) {
	lines := strings.Split(existing, "\n")
	kept := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != constants.ManagedBlockBegin {
			kept = append(kept, lines[i])
			continue
		}

		end := -1
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == constants.ManagedBlockEnd {
				end = j
				break
			}
		}
		if end == -1 {
			unterminated = true
			continue
		}
		i = end
	}

	body := strings.TrimRight(strings.Join(kept, "\n"), "\n")
	if body == "" {
		return block, unterminated
	}
	return body + "\n\n" + block, unterminated
}
