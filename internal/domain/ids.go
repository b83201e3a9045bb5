package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NewFamilyID returns an id of the form F:dddd-dddd-dddd.
func NewFamilyID() string { return "F:" + digitGroups() }

// NewChildID returns an id of the form C:dddd-dddd-dddd.
func NewChildID() string { return "C:" + digitGroups() }

func digitGroups() string {
	return fmt.Sprintf("%04d-%04d-%04d", rand4(), rand4(), rand4())
}

func rand4() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return 0
	}
	return n.Int64()
}
