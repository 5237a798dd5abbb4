package model

import (
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// StorageProfile is the per-user storage configuration resolved once per
// request from the profile source. KeySalt feeds passphrase key derivation
// and is redacted from logs.
type StorageProfile struct {
	Username     string                 `toml:"name"`
	Encryption   types.EncryptionType   `toml:"encryption"`
	PhysicalPath string                 `toml:"physical_path"`
	Fallback     types.FallbackBehavior `toml:"fallback"`
	KeySalt      []byte                 `toml:"-" masq:"secret"`
}

// Validate checks if the StorageProfile is consistent
func (p *StorageProfile) Validate() error {
	if p.Username == "" {
		return goerr.New("profile name is required")
	}
	if !p.Encryption.Normalize().IsValid() {
		return goerr.New("invalid encryption type",
			goerr.V("name", p.Username),
			goerr.V("encryption", string(p.Encryption)),
		)
	}
	if !p.Fallback.Normalize().IsValid() {
		return goerr.New("invalid fallback behavior",
			goerr.V("name", p.Username),
			goerr.V("fallback", string(p.Fallback)),
		)
	}
	return nil
}

// Encrypted reports whether the router must seal file contents itself.
// Volume encryption is transparent below the filesystem, so router I/O
// stays plaintext.
func (p *StorageProfile) Encrypted() bool {
	return p != nil && p.Encryption.Normalize() == types.EncryptionPerFileAES
}

// ProfileRoot is the resolved storage root for one profile
type ProfileRoot struct {
	Username    string               `json:"username"`
	Root        string               `json:"root"`
	StorageType types.StorageType    `json:"storage_type"`
	Encryption  types.EncryptionType `json:"encryption"`
	ReadOnly    bool                 `json:"read_only"`
}

// StorageStatus is the introspection view of a profile's storage
type StorageStatus struct {
	Username    string               `json:"username"`
	Root        string               `json:"root"`
	StorageType types.StorageType    `json:"storage_type"`
	Encryption  types.EncryptionType `json:"encryption"`
	ReadOnly    bool                 `json:"read_only"`
	Unlocked    bool                 `json:"unlocked"`
}
