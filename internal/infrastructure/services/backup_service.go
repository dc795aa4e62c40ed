package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// BackupService는 설정 파일 백업을 관리하는 서비스입니다
type BackupService struct {
	fileSystem interfaces.FileSystem
	clock      interfaces.Clock
	logger     *logrus.Logger
	backupDir  string
}

// NewBackupService는 새로운 BackupService를 생성합니다
func NewBackupService(
	fs interfaces.FileSystem,
	clock interfaces.Clock,
	logger *logrus.Logger,
	backupDir string,
) interfaces.BackupService {
	return &BackupService{
		fileSystem: fs,
		clock:      clock,
		logger:     logger,
		backupDir:  backupDir,
	}
}

// CreateBackup은 configPath의 현재 내용을 백업하고 백업 경로를 반환합니다.
// 원본 파일이 없으면 빈 경로와 nil을 반환합니다.
func (s *BackupService) CreateBackup(ctx context.Context, name string, configPath string) (string, error) {
	// 원본 파일 존재 확인
	if !s.fileSystem.Exists(configPath) {
		s.logger.WithFields(logrus.Fields{
			"name": name,
			"path": configPath,
		}).Debug("백업할 설정 파일이 없음")
		return "", nil
	}

	// 백업 디렉토리 생성
	if err := s.fileSystem.MkdirAll(s.backupDir, 0755); err != nil {
		return "", errors.NewSystemError("백업 디렉토리 생성 실패", err)
	}

	content, err := s.fileSystem.ReadFile(configPath)
	if err != nil {
		return "", errors.NewSystemError("설정 파일 읽기 실패", err)
	}

	// 백업 파일명 생성 (예: sysctl_20250108_150405.conf)
	timestamp := s.clock.Now().Format("20060102_150405")
	ext := filepath.Ext(configPath)
	backupPath := filepath.Join(s.backupDir, fmt.Sprintf("%s_%s%s", name, timestamp, ext))
	for i := 1; s.fileSystem.Exists(backupPath); i++ {
		// 같은 초에 두 번 실행된 경우
		backupPath = filepath.Join(s.backupDir, fmt.Sprintf("%s_%s_%d%s", name, timestamp, i, ext))
	}

	if err := s.fileSystem.WriteFile(backupPath, content, 0644); err != nil {
		return "", errors.NewSystemError("백업 파일 저장 실패", err)
	}

	s.logger.WithFields(logrus.Fields{
		"name":        name,
		"backup_path": backupPath,
	}).Info("설정 백업 생성 완료")

	return backupPath, nil
}

// LatestBackup은 가장 최근 백업 파일의 경로를 반환합니다
func (s *BackupService) LatestBackup(ctx context.Context, name string) (string, error) {
	backupFiles, err := s.findBackupFiles(name)
	if err != nil {
		return "", err
	}

	if len(backupFiles) == 0 {
		return "", errors.NewReadError(fmt.Sprintf("%s의 백업 파일을 찾을 수 없음", name), nil)
	}

	// 이미 정렬됨
	return filepath.Join(s.backupDir, backupFiles[len(backupFiles)-1]), nil
}

// HasBackup은 백업이 존재하는지 확인합니다
func (s *BackupService) HasBackup(ctx context.Context, name string) bool {
	backupFiles, err := s.findBackupFiles(name)
	if err != nil {
		s.logger.WithError(err).Error("백업 파일 검색 실패")
		return false
	}

	return len(backupFiles) > 0
}

// findBackupFiles는 name의 백업 파일들을 찾아 정렬된 목록을 반환합니다
func (s *BackupService) findBackupFiles(name string) ([]string, error) {
	if !s.fileSystem.Exists(s.backupDir) {
		return []string{}, nil
	}

	files, err := s.fileSystem.ListFiles(s.backupDir)
	if err != nil {
		return nil, errors.NewSystemError("백업 디렉토리 읽기 실패", err)
	}

	var backupFiles []string
	prefix := name + "_"
	for _, file := range files {
		if strings.HasPrefix(file, prefix) {
			backupFiles = append(backupFiles, file)
		}
	}

	// 파일명 기준 정렬 (타임스탬프가 포함되어 있으므로 시간순 정렬됨)
	sort.Strings(backupFiles)

	return backupFiles, nil
}
