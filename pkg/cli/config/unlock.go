package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/keyring"
)

// Unlock holds the passphrase used to unlock encrypted profiles for the
// lifetime of the process. The passphrase never appears in logs.
type Unlock struct {
	passphrase string
	ttl        time.Duration
}

// Flags returns CLI flags for profile unlocking
func (u *Unlock) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "passphrase",
			Usage:       "Passphrase for encrypted profiles (prefer the environment variable over the flag)",
			Sources:     cli.EnvVars("MNEMO_PASSPHRASE"),
			Destination: &u.passphrase,
		},
		&cli.DurationFlag{
			Name:        "unlock-ttl",
			Usage:       "How long an unlocked profile key stays cached (0 = until exit)",
			Sources:     cli.EnvVars("MNEMO_UNLOCK_TTL"),
			Destination: &u.ttl,
		},
	}
}

// Apply unlocks the profile in the key cache when it needs a key. Profiles
// without per-file encryption are left alone. A missing passphrase for an
// encrypted profile is an error only once an operation actually touches
// sealed data, so Apply reports it without failing hard.
func (u *Unlock) Apply(cache *keyring.Cache, profiles *StaticProfiles, username string) error {
	profile := profiles.Profile(username)
	if !profile.Encrypted() {
		return nil
	}
	if u.passphrase == "" {
		return goerr.Wrap(ErrPassphraseMissing, "profile is encrypted",
			goerr.V(ProfileNameKey, username))
	}

	key, err := keyring.Derive(u.passphrase, profile.KeySalt)
	if err != nil {
		return err
	}
	cache.Unlock(username, key, u.ttl)
	return nil
}
