package config

import (
	"context"
	"encoding/base64"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
)

// Profiles holds the path of the storage profile configuration
type Profiles struct {
	path string
}

// Flags returns CLI flags for profile configuration
func (p *Profiles) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "profiles",
			Usage:       "Path to the storage profiles TOML file (optional; unknown profiles use internal storage)",
			Sources:     cli.EnvVars("MNEMO_PROFILES"),
			Destination: &p.path,
		},
	}
}

// Path returns the configured profiles file path
func (p *Profiles) Path() string {
	return p.path
}

// profileEntry is the TOML shape of one profile. KeySalt is base64 in the
// file and decoded before it reaches the domain model.
type profileEntry struct {
	Name         string `toml:"name"`
	Encryption   string `toml:"encryption"`
	PhysicalPath string `toml:"physical_path"`
	Fallback     string `toml:"fallback"`
	KeySalt      string `toml:"key_salt"`
}

type profilesFile struct {
	Profiles []profileEntry `toml:"profile"`
}

// StaticProfiles serves storage profiles loaded once from a TOML file.
// Unknown usernames resolve to nil, which the storage router treats as
// internal unencrypted storage.
type StaticProfiles struct {
	byName map[string]*model.StorageProfile
}

// StorageConfig returns the profile for the username, or nil when the
// username has no explicit configuration
func (s *StaticProfiles) StorageConfig(ctx context.Context, username string) (*model.StorageProfile, error) {
	if s == nil {
		return nil, nil
	}
	return s.byName[username], nil
}

// Profile returns the loaded profile by name, or nil
func (s *StaticProfiles) Profile(username string) *model.StorageProfile {
	if s == nil {
		return nil
	}
	return s.byName[username]
}

// Configure loads and validates the profiles file. A missing --profiles
// flag yields an empty source; a configured path that does not exist is an
// error.
func (p *Profiles) Configure() (*StaticProfiles, error) {
	source := &StaticProfiles{byName: map[string]*model.StorageProfile{}}
	if p.path == "" {
		return source, nil
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrProfilesNotFound, "cannot read profiles file",
				goerr.V(ProfilesPathKey, p.path))
		}
		return nil, goerr.Wrap(err, "failed to read profiles file",
			goerr.V(ProfilesPathKey, p.path))
	}

	var file profilesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse profiles TOML",
			goerr.V(ProfilesPathKey, p.path))
	}

	for _, entry := range file.Profiles {
		profile, err := entry.toProfile()
		if err != nil {
			return nil, goerr.Wrap(err, "invalid profile",
				goerr.V(ProfilesPathKey, p.path),
				goerr.V(ProfileNameKey, entry.Name))
		}
		if _, exists := source.byName[profile.Username]; exists {
			return nil, goerr.Wrap(ErrDuplicateProfile, "profile defined twice",
				goerr.V(ProfilesPathKey, p.path),
				goerr.V(ProfileNameKey, profile.Username))
		}
		source.byName[profile.Username] = profile
	}

	return source, nil
}

func (e *profileEntry) toProfile() (*model.StorageProfile, error) {
	profile := &model.StorageProfile{
		Username:     e.Name,
		Encryption:   types.EncryptionType(e.Encryption),
		PhysicalPath: e.PhysicalPath,
		Fallback:     types.FallbackBehavior(e.Fallback),
	}

	if e.KeySalt != "" {
		salt, err := base64.StdEncoding.DecodeString(e.KeySalt)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidProfile, "key_salt is not valid base64")
		}
		profile.KeySalt = salt
	}

	if err := profile.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidProfile, "profile validation failed", goerr.V("cause", err.Error()))
	}
	if profile.Encrypted() && len(profile.KeySalt) == 0 {
		return nil, goerr.Wrap(ErrInvalidProfile, "encrypted profile requires key_salt")
	}
	return profile, nil
}
