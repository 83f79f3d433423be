// Package gen produces fake registration data for the register flow.
// Pure data producers; no control flow, no state.
package gen

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

// UserName returns a unique load-test user name.
func UserName() string {
	return "loadgen_" + strings.Split(uuid.NewString(), "-")[0]
}

// Email returns a fake email address derived from a fresh UUID.
func Email() string {
	return strings.Split(uuid.NewString(), "-")[0] + "@test.example.com"
}

// DocumentNumber returns an 18-digit identity document number.
func DocumentNumber() string {
	var b strings.Builder
	for i := 0; i < 18; i++ {
		fmt.Fprintf(&b, "%d", rand.Intn(10))
	}
	return b.String()
}

// Password returns a random password for generated users.
func Password() string {
	return strings.Split(uuid.NewString(), "-")[4]
}

// PhoneNumber returns a fake 11-digit mobile number.
func PhoneNumber() string {
	var b strings.Builder
	b.WriteString("1")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "%d", rand.Intn(10))
	}
	return b.String()
}
