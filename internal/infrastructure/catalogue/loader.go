package catalogue

import (
	"bytes"
	"fmt"

	"fasterdata-tuning/internal/domain/entities"
	"fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// File은 카탈로그 YAML 파일의 구조입니다
//
//	directives:
//	  - scope: sysctl
//	    key: net.core.rmem_max
//	    value: 67108864
//	  - scope: nic_pause
//	    interface: eth0
//	    key: rx
//	    value: "off"
//	    verify_only: true
type File struct {
	Directives []DirectiveEntry `yaml:"directives"`
}

// DirectiveEntry는 카탈로그 파일의 지시 하나입니다
type DirectiveEntry struct {
	Scope      string `yaml:"scope"`
	Key        string `yaml:"key"`
	Value      string `yaml:"value"`
	Interface  string `yaml:"interface,omitempty"`
	VerifyOnly bool   `yaml:"verify_only,omitempty"`
}

// YAMLLoader는 YAML 카탈로그 파일을 읽어 검증된 Catalogue로 변환합니다
type YAMLLoader struct {
	fileSystem interfaces.FileSystem
	logger     *logrus.Logger
}

// NewYAMLLoader는 새로운 YAMLLoader를 생성합니다
func NewYAMLLoader(fs interfaces.FileSystem, logger *logrus.Logger) *YAMLLoader {
	return &YAMLLoader{
		fileSystem: fs,
		logger:     logger,
	}
}

// Load는 path의 카탈로그를 읽습니다. 모든 실패는 VALIDATION 에러입니다.
func (l *YAMLLoader) Load(path string) (entities.Catalogue, error) {
	content, err := l.fileSystem.ReadFile(path)
	if err != nil {
		return entities.Catalogue{}, errors.NewValidationError(fmt.Sprintf("카탈로그 파일을 읽을 수 없음: %s", path), err)
	}

	catalogue, err := Parse(content)
	if err != nil {
		return entities.Catalogue{}, errors.NewValidationError(fmt.Sprintf("카탈로그 파일이 유효하지 않음: %s", path), err)
	}
	catalogue.Source = path

	l.logger.WithFields(logrus.Fields{
		"path":       path,
		"directives": catalogue.Len(),
	}).Info("Catalogue loaded")

	return catalogue, nil
}

// Parse는 YAML 내용을 Catalogue로 변환하고 검증합니다. 알 수 없는 필드는 거부합니다.
func Parse(content []byte) (entities.Catalogue, error) {
	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return entities.Catalogue{}, fmt.Errorf("YAML 파싱 실패: %w", err)
	}

	if len(file.Directives) == 0 {
		return entities.Catalogue{}, fmt.Errorf("지시가 하나도 없음")
	}

	catalogue := entities.Catalogue{Directives: make([]entities.TuningDirective, 0, len(file.Directives))}
	for i, entry := range file.Directives {
		scope, err := entities.ParseScope(entry.Scope)
		if err != nil {
			return entities.Catalogue{}, fmt.Errorf("%d번째 지시: %w", i+1, err)
		}
		d, err := entities.NewTuningDirective(scope, entry.Key, entry.Value, entry.Interface)
		if err != nil {
			return entities.Catalogue{}, fmt.Errorf("%d번째 지시: %w", i+1, err)
		}
		if entry.VerifyOnly {
			d = d.AsVerifyOnly()
		}
		catalogue.Directives = append(catalogue.Directives, d)
	}

	if err := catalogue.Validate(); err != nil {
		return entities.Catalogue{}, err
	}
	return catalogue, nil
}

// Marshal은 카탈로그를 Load가 읽을 수 있는 YAML로 직렬화합니다
func Marshal(c entities.Catalogue) ([]byte, error) {
	file := File{Directives: make([]DirectiveEntry, 0, c.Len())}
	for _, d := range c.Directives {
		file.Directives = append(file.Directives, DirectiveEntry{
			Scope:      string(d.Scope()),
			Key:        d.Key(),
			Value:      d.DesiredValue(),
			Interface:  d.TargetInterface(),
			VerifyOnly: d.VerifyOnly(),
		})
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&file); err != nil {
		return nil, fmt.Errorf("카탈로그 직렬화 실패: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
