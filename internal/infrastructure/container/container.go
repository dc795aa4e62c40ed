package container

import (
	"fasterdata-tuning/internal/application/usecases"
	"fasterdata-tuning/internal/domain/interfaces"
	"fasterdata-tuning/internal/domain/services"
	"fasterdata-tuning/internal/infrastructure/adapters"
	"fasterdata-tuning/internal/infrastructure/catalogue"
	"fasterdata-tuning/internal/infrastructure/config"
	"fasterdata-tuning/internal/infrastructure/health"
	"fasterdata-tuning/internal/infrastructure/network"
	infraServices "fasterdata-tuning/internal/infrastructure/services"

	"github.com/sirupsen/logrus"
)

// Container는 의존성 주입을 관리하는 컨테이너입니다
type Container struct {
	config *config.Config
	logger *logrus.Logger

	// 인프라스트럭처 어댑터들
	fileSystem      interfaces.FileSystem
	commandExecutor interfaces.CommandExecutor
	clock           interfaces.Clock
	osDetector      interfaces.OSDetector

	// 서비스들
	healthService    *health.HealthService
	handlerFactory   *network.SettingHandlerFactory
	hostProbe        *network.HostProbe
	catalogueBuilder *services.CatalogueBuilder
	catalogueLoader  interfaces.CatalogueLoader
	backupService    interfaces.BackupService

	// 유스케이스
	applyTuningUseCase   *usecases.ApplyTuningUseCase
	persistSysctlUseCase *usecases.PersistSysctlUseCase
}

// Option은 기본 어댑터를 교체합니다 (테스트용)
type Option func(*Container)

// WithCommandExecutor는 외부 명령 실행기를 교체합니다
func WithCommandExecutor(executor interfaces.CommandExecutor) Option {
	return func(c *Container) { c.commandExecutor = executor }
}

// WithFileSystem은 파일 시스템을 교체합니다
func WithFileSystem(fs interfaces.FileSystem) Option {
	return func(c *Container) { c.fileSystem = fs }
}

// NewContainer는 새로운 Container를 생성합니다
func NewContainer(cfg *config.Config, logger *logrus.Logger, opts ...Option) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	if err := container.initializeInfrastructure(opts); err != nil {
		return nil, err
	}

	if err := container.initializeServices(); err != nil {
		return nil, err
	}

	if err := container.initializeUseCases(); err != nil {
		return nil, err
	}

	return container, nil
}

// initializeInfrastructure는 인프라스트럭처 컴포넌트들을 초기화합니다
func (c *Container) initializeInfrastructure(opts []Option) error {
	// 기본 어댑터들 초기화
	c.fileSystem = adapters.NewRealFileSystem()
	c.commandExecutor = adapters.NewRealCommandExecutor()
	c.clock = adapters.NewRealClock()

	for _, opt := range opts {
		opt(c)
	}

	c.osDetector = adapters.NewRealOSDetector(c.fileSystem, c.config.Paths.OSRelease)
	return nil
}

// initializeServices는 서비스들을 초기화합니다
func (c *Container) initializeServices() error {
	timeout := c.config.Tuning.CommandTimeout

	// 헬스 서비스
	c.healthService = health.NewHealthService(c.clock, c.osDetector, c.logger)

	// scope별 도구 어댑터 팩토리
	c.handlerFactory = network.NewSettingHandlerFactory(c.commandExecutor, c.fileSystem, timeout, c.logger)

	// 호스트 정보 조회와 카탈로그 계산
	c.hostProbe = network.NewHostProbe(c.commandExecutor, c.fileSystem, timeout, c.logger)
	c.catalogueBuilder = services.NewCatalogueBuilder(c.hostProbe, c.osDetector, c.logger)
	c.catalogueLoader = catalogue.NewYAMLLoader(c.fileSystem, c.logger)

	// 백업 서비스
	c.backupService = infraServices.NewBackupService(c.fileSystem, c.clock, c.logger, c.config.Paths.BackupDirectory)
	c.healthService.WithBackups(c.backupService)

	return nil
}

// initializeUseCases는 유스케이스들을 초기화합니다
func (c *Container) initializeUseCases() error {
	// 튜닝 적용 유스케이스
	c.applyTuningUseCase = usecases.NewApplyTuningUseCase(
		c.handlerFactory,
		c.config.ConfirmRetryConfig(),
		c.clock,
		c.logger,
	)

	// sysctl 영구 설정 유스케이스
	c.persistSysctlUseCase = usecases.NewPersistSysctlUseCase(
		c.fileSystem,
		c.backupService,
		c.config.Paths.SysctlConf,
		c.logger,
	)

	return nil
}

// GetConfig는 설정을 반환합니다
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetClock은 시계를 반환합니다
func (c *Container) GetClock() interfaces.Clock {
	return c.clock
}

// GetHealthService는 헬스 서비스를 반환합니다
func (c *Container) GetHealthService() *health.HealthService {
	return c.healthService
}

// GetOSDetector는 OS 감지기를 반환합니다
func (c *Container) GetOSDetector() interfaces.OSDetector {
	return c.osDetector
}

// GetCatalogueBuilder는 카탈로그 계산 서비스를 반환합니다
func (c *Container) GetCatalogueBuilder() *services.CatalogueBuilder {
	return c.catalogueBuilder
}

// GetCatalogueLoader는 카탈로그 파일 로더를 반환합니다
func (c *Container) GetCatalogueLoader() interfaces.CatalogueLoader {
	return c.catalogueLoader
}

// GetApplyTuningUseCase는 튜닝 적용 유스케이스를 반환합니다
func (c *Container) GetApplyTuningUseCase() *usecases.ApplyTuningUseCase {
	return c.applyTuningUseCase
}

// GetPersistSysctlUseCase는 sysctl 영구 설정 유스케이스를 반환합니다
func (c *Container) GetPersistSysctlUseCase() *usecases.PersistSysctlUseCase {
	return c.persistSysctlUseCase
}
