package app

import (
	"math"

	"github.com/shandysiswandi/credvault/internal/pkg/config"
	"github.com/shandysiswandi/credvault/internal/pkg/hash"
)

// hashersFromConfig builds every supported hasher from the hash.* keys.
// Hashers with bad parameters or missing keys stay registered but report
// themselves unavailable, so stored hashes still resolve to them.
func hashersFromConfig(cfg config.Config) []hash.Hasher {
	return []hash.Hasher{
		hash.NewArgon2id(hash.Argon2idConfig{
			MemoryKiB:     cfg.GetUint32("hash.argon2id.memory_kib"),
			Iterations:    cfg.GetUint32("hash.argon2id.iterations"),
			Parallelism:   uint8(min(cfg.GetUint32("hash.argon2id.parallelism"), math.MaxUint8)),
			SaltLength:    cfg.GetUint32("hash.argon2id.salt_length"),
			KeyLength:     cfg.GetUint32("hash.argon2id.key_length"),
			MaxConcurrent: cfg.GetInt("hash.argon2id.max_concurrent"),
			Pepper:        cfg.GetString("hash.argon2id.pepper"),
		}),
		hash.NewScrypt(hash.ScryptConfig{
			LogN:       uint8(min(cfg.GetUint32("hash.scrypt.log_n"), math.MaxUint8)),
			R:          cfg.GetInt("hash.scrypt.r"),
			P:          cfg.GetInt("hash.scrypt.p"),
			SaltLength: cfg.GetInt("hash.scrypt.salt_length"),
			KeyLength:  cfg.GetInt("hash.scrypt.key_length"),
		}),
		hash.NewBcrypt(cfg.GetInt("hash.bcrypt.cost"), cfg.GetString("hash.bcrypt.pepper")),
		hash.NewHMACSHA256(cfg.GetString("hash.hmac.secret")),
		hash.NewSHA256(),
	}
}
