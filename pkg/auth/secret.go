package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashSecret hashes a client secret with bcrypt. A cost of 0 uses bcrypt.DefaultCost.
func HashSecret(secret string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	return string(bytes), err
}

// CheckSecretHash reports whether secret matches a bcrypt hash.
func CheckSecretHash(secret, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	return err == nil
}

// Clients maps client ids to bcrypt hashes of their secrets.
type Clients map[string]string

// ParseClients reads "id:hash" pairs separated by commas.
// bcrypt hashes never contain ':' or ',' so the first ':' splits each pair.
func ParseClients(s string) (Clients, error) {
	clients := Clients{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, hash, ok := strings.Cut(pair, ":")
		if !ok || id == "" || hash == "" {
			return nil, fmt.Errorf("malformed client entry %q", pair)
		}
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("client %s: %w", id, err)
		}
		clients[id] = hash
	}
	return clients, nil
}

// Authenticate checks a client's secret. Unknown clients never match.
func (c Clients) Authenticate(id, secret string) bool {
	hash, ok := c[id]
	if !ok {
		return false
	}
	return CheckSecretHash(secret, hash)
}
