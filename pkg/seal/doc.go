// Package seal provides authenticated symmetric encryption for snapshots at
// rest.
//
// A Cipher seals a plaintext with AES-256-GCM under a data key. The sealed
// form is
//
//	'R' | nonce (12 bytes) | ciphertext | tag (16 bytes)
//
// and the additional authenticated data (AAD) binds a sealed blob to its
// purpose, so a snapshot sealed for one store cannot be opened as another.
//
// # Usage
//
//	key, err := seal.KeyFromBase64(os.Getenv("REKAMA_DATA_KEY"))
//	c, err := seal.New(key)
//	sealed, err := c.Seal([]byte("rekama:snapshot"), image)
//	image, err = c.Open([]byte("rekama:snapshot"), sealed)
package seal
