package service

import (
	"fmt"

	"github.com/chainrequest/blockchain-api/core"
)

// CreateProject stores project and issues its first api key. The project chain must
// be configured unless the project brings its own RPC url.
func (s *Service) CreateProject(project *core.Project) (string, *core.APIKey, error) {
	if project.CustomRPCURL == "" && !s.chains.Supported(project.ChainID) {
		return "", nil, fmt.Errorf("%w: %d", ErrUnsupportedChain, project.ChainID)
	}
	if err := s.store.Projects.Create(project); err != nil {
		return "", nil, err
	}
	return s.store.Projects.CreateAPIKey(project.ID)
}

// Authenticate returns the project owning apiKey.
func (s *Service) Authenticate(apiKey string) (*core.Project, error) {
	return s.store.Projects.ByAPIKey(apiKey)
}
