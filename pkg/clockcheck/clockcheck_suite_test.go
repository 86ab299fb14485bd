package clockcheck_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestClockcheck(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "clockcheck suite")
}
