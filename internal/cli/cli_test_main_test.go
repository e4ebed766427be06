package cli_test

import (
	"testing"

	"bgit.dev/bgit/testhelpers"
)

func TestMain(m *testing.M) {
	testhelpers.TestMain(m, nil)
}
