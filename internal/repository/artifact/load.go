package artifact

import (
	"fmt"

	"github.com/kailas-cloud/movierec/internal/domain"
	"github.com/kailas-cloud/movierec/internal/domain/catalog"
	"github.com/kailas-cloud/movierec/internal/domain/similarity"
)

// Artifacts is the loaded, immutable pair the ranker works on.
type Artifacts struct {
	Catalog *catalog.Catalog
	Matrix  *similarity.Matrix
}

// Load reads both artifacts and checks that their dimensions agree.
func Load(catalogPath, matrixPath string) (*Artifacts, error) {
	c, err := ReadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	m, err := ReadMatrix(matrixPath)
	if err != nil {
		return nil, err
	}
	if m.Size() != c.Len() {
		return nil, fmt.Errorf("%w: matrix is %dx%d but catalog has %d titles",
			domain.ErrInvalidArtifact, m.Size(), m.Size(), c.Len())
	}
	return &Artifacts{Catalog: c, Matrix: m}, nil
}
