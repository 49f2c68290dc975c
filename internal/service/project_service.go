package service

import (
	"context"

	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/types"
)

// ============================================
// Project Service
// ============================================

type ProjectService interface {
	Create(ctx context.Context, clientID, name, description, actorID, role string) (*repository.Project, error)
	Get(ctx context.Context, id, actorID, role string) (*repository.Project, error)
	List(ctx context.Context, actorID, role string) ([]*repository.Project, error)
	Update(ctx context.Context, project *repository.Project, actorID, role string) error
	Phases(ctx context.Context, projectID, actorID, role string) ([]*repository.ProjectPhase, error)

	// File attachment records. Upload mechanics live in the handler; the
	// service owns the metadata rows.
	AttachFile(ctx context.Context, file *repository.ProjectFile, actorID, role string) error
	ListFiles(ctx context.Context, projectID, actorID, role string) ([]*repository.ProjectFile, error)
	ArchiveFile(ctx context.Context, fileID, actorID, role string) error
	FileSpec(ctx context.Context, fileID, actorID, role string) (*repository.FileTechnicalSpec, error)
}

type projectService struct {
	projectRepo repository.ProjectRepository
	clientRepo  repository.ClientRepository
	fileRepo    repository.FileRepository
	activitySvc ActivityService
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	clientRepo repository.ClientRepository,
	fileRepo repository.FileRepository,
	activitySvc ActivityService,
) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		clientRepo:  clientRepo,
		fileRepo:    fileRepo,
		activitySvc: activitySvc,
	}
}

func (s *projectService) Create(ctx context.Context, clientID, name, description, actorID, role string) (*repository.Project, error) {
	if role != types.RoleAdmin {
		return nil, ErrForbidden
	}
	if name == "" {
		return nil, ErrInvalidInput
	}
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrNotFound
	}

	project := &repository.Project{
		ClientID: clientID,
		Name:     name,
	}
	if description != "" {
		project.Description = &description
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.activitySvc.Emit(ctx, actorID, ActionProjectCreated, EntityProject, project.ID,
		"Project created for "+client.CompanyName,
		map[string]interface{}{"clientId": clientID})
	return project, nil
}

func (s *projectService) load(ctx context.Context, id, actorID, role string) (*repository.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if err := authorizeProject(ctx, s.clientRepo, project, actorID, role); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) Get(ctx context.Context, id, actorID, role string) (*repository.Project, error) {
	return s.load(ctx, id, actorID, role)
}

func (s *projectService) List(ctx context.Context, actorID, role string) ([]*repository.Project, error) {
	if role == types.RoleAdmin {
		return s.projectRepo.List(ctx)
	}
	client, err := s.clientRepo.FindByUserID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return []*repository.Project{}, nil
	}
	return s.projectRepo.FindByClientID(ctx, client.ID)
}

func (s *projectService) Update(ctx context.Context, project *repository.Project, actorID, role string) error {
	if _, err := s.load(ctx, project.ID, actorID, role); err != nil {
		return err
	}
	if project.Name == "" {
		return ErrInvalidInput
	}
	return s.projectRepo.Update(ctx, project)
}

func (s *projectService) Phases(ctx context.Context, projectID, actorID, role string) ([]*repository.ProjectPhase, error) {
	if _, err := s.load(ctx, projectID, actorID, role); err != nil {
		return nil, err
	}
	return s.projectRepo.FindPhases(ctx, projectID)
}

func (s *projectService) AttachFile(ctx context.Context, file *repository.ProjectFile, actorID, role string) error {
	if _, err := s.load(ctx, file.ProjectID, actorID, role); err != nil {
		return err
	}
	if file.Filename == "" || file.StoragePath == "" {
		return ErrInvalidInput
	}
	file.Status = types.FileActive
	if actorID != "" {
		file.UploadedBy = &actorID
	}
	return s.fileRepo.Create(ctx, file)
}

func (s *projectService) ListFiles(ctx context.Context, projectID, actorID, role string) ([]*repository.ProjectFile, error) {
	if _, err := s.load(ctx, projectID, actorID, role); err != nil {
		return nil, err
	}
	return s.fileRepo.FindActiveByProject(ctx, projectID)
}

func (s *projectService) ArchiveFile(ctx context.Context, fileID, actorID, role string) error {
	file, err := s.fileRepo.FindByID(ctx, fileID)
	if err != nil {
		return err
	}
	if file == nil {
		return ErrNotFound
	}
	if _, err := s.load(ctx, file.ProjectID, actorID, role); err != nil {
		return err
	}
	return s.fileRepo.Archive(ctx, fileID)
}

func (s *projectService) FileSpec(ctx context.Context, fileID, actorID, role string) (*repository.FileTechnicalSpec, error) {
	file, err := s.fileRepo.FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrNotFound
	}
	if _, err := s.load(ctx, file.ProjectID, actorID, role); err != nil {
		return nil, err
	}
	spec, err := s.fileRepo.FindSpec(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, ErrNotFound
	}
	return spec, nil
}
