package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data. Scene hashes and frame ETags are
// built on it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// frameDigest names a frame "frame:<sha256>" over the JSON encoding of
// its scene hash and render inputs. encoding/json sorts map keys, so the
// Values map never reorders the digest.
func frameDigest(sceneHash string, opts FrameKeyOpts) string {
	data, _ := json.Marshal(struct {
		Scene string       `json:"scene"`
		Opts  FrameKeyOpts `json:"opts"`
	}{sceneHash, opts})
	return "frame:" + Hash(data)
}
