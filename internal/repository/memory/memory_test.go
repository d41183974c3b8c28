package memory

import (
	"testing"

	"github.com/carlot/carlot/internal/repository"
	"github.com/carlot/carlot/internal/repository/repotest"
)

func TestStore(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Store {
		return New()
	})
}
