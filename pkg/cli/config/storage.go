package config

import (
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/audit"
)

// Storage holds configuration for the data root and the audit trail
type Storage struct {
	dataDir  string
	auditLog string
}

// Flags returns CLI flags for storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Root directory for internal profile storage and state",
			Value:       defaultDataDir(),
			Sources:     cli.EnvVars("MNEMO_DATA_DIR"),
			Destination: &s.dataDir,
		},
		&cli.StringFlag{
			Name:        "audit-log",
			Usage:       "Append storage audit records to this JSONL file in addition to the logger",
			Sources:     cli.EnvVars("MNEMO_AUDIT_LOG"),
			Destination: &s.auditLog,
		},
	}
}

// DataDir returns the configured data root
func (s *Storage) DataDir() string {
	return s.dataDir
}

// Configure creates the data root and builds the audit sink. The slog sink
// is always active; a JSONL file sink is added when --audit-log is set.
func (s *Storage) Configure() (string, interfaces.AuditSink, error) {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return "", nil, goerr.Wrap(err, "failed to create data directory", goerr.V("path", s.dataDir))
	}

	var sink interfaces.AuditSink = audit.NewSlogSink()
	if s.auditLog != "" {
		fileSink, err := audit.NewFileSink(s.auditLog)
		if err != nil {
			return "", nil, err
		}
		sink = audit.NewMultiSink(sink, fileSink)
	}

	return s.dataDir, sink, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mnemo"
	}
	return filepath.Join(home, ".mnemo")
}
