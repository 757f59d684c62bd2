package sim

import (
	"strings"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// NameMustBeValid panics if the name is not a dot-separated list of non-empty
// tokens with matching brackets, such as "MMU" or "Core[0].TLB".
func NameMustBeValid(name string) {
	if name == "" {
		panic("name must not be empty")
	}

	for _, token := range strings.Split(name, ".") {
		if token == "" {
			panic("name token must not be empty")
		}

		bracketMustMatch(token)
	}
}

func bracketMustMatch(token string) {
	open := 0
	for _, c := range token {
		switch c {
		case '[':
			open++
		case ']':
			open--
			if open < 0 {
				panic("name bracket must match")
			}
		}
	}

	if open != 0 {
		panic("name bracket must match")
	}
}
