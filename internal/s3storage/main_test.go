package s3storage

import (
	"io"
	"os"
	"testing"

	"github.com/dharsanguruparan/PhotoDrop/internal/logging"
)

func TestMain(m *testing.M) {
	logging.SetupWriter(io.Discard, "error", false)
	os.Exit(m.Run())
}
