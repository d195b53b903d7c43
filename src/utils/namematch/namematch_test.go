package namematch

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestNameMatchTestSuite(t *testing.T) {
	suite.Run(t, new(NameMatchTestSuite))
}

type NameMatchTestSuite struct {
	suite.Suite
}

func (s *NameMatchTestSuite) TestEmptyNames() {
	require.Equal(s.T(), NotApplicable, Match("", "Jane Doe"))
	require.Equal(s.T(), NotApplicable, Match("Jane Doe", ""))
	require.Equal(s.T(), NotApplicable, Match("   ", "Jane Doe"))
	require.Equal(s.T(), NotApplicable, Match("!!!", "Jane Doe"))
	require.True(s.T(), NotApplicable.Passes())
}

func (s *NameMatchTestSuite) TestEqualAfterNormalization() {
	for _, tc := range []struct{ a, b string }{
		{"Jane Doe", "Jane Doe"},
		{"JANE   DOE", "jane doe"},
		{"Jane-Doe.", "janedoe"},
		{"  Priya  Sharma ", "priya sharma"},
	} {
		require.Equal(s.T(), Matched, Match(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
	}
}

func (s *NameMatchTestSuite) TestContainment() {
	require.Equal(s.T(), Matched, Match("Smith", "John Smith"))
	require.Equal(s.T(), Matched, Match("Ravi Kumar Verma", "kumar verma"))
}

func (s *NameMatchTestSuite) TestMiddleInitial() {
	require.Equal(s.T(), Matched, Match("Jon Smith", "Jon A Smith"))
}

func (s *NameMatchTestSuite) TestSharedAffix() {
	// "ananya" and "anand" share the "ana" prefix
	require.Equal(s.T(), Matched, Match("Ananya Iyer", "Anand Rao"))

	// "mohanty" and "shanty" share the "nty" suffix
	require.Equal(s.T(), Matched, Match("Sita Mohanty", "Lila Shanty"))
}

func (s *NameMatchTestSuite) TestFirstOrLastTokenEqual() {
	require.Equal(s.T(), Matched, Match("Al Xu", "Al Bo"))
	require.Equal(s.T(), Matched, Match("Bo Xu", "Al Xu"))
}

func (s *NameMatchTestSuite) TestMismatch() {
	require.Equal(s.T(), Mismatched, Match("Rahul Gupta", "Meera Nair"))
	require.Equal(s.T(), Mismatched, Match("Jane Doe", "Peter Pan"))
	require.False(s.T(), Mismatched.Passes())
}

func (s *NameMatchTestSuite) TestNonLatinNames() {
	require.Equal(s.T(), Matched, Match("राहुल गुप्ता", "राहुल  गुप्ता."))
	require.Equal(s.T(), Mismatched, Match("राहुल गुप्ता", "Meera Nair"))
	require.Equal(s.T(), Mismatched, NewMatcher(Lenient).Match("राहुल गुप्ता", "Meera Nair"))
	require.Equal(s.T(), Mismatched, NewMatcher(Strict).Match("ராஜேஷ் குமார்", "Meera Nair"))
}

func (s *NameMatchTestSuite) TestShareSubstring() {
	require.True(s.T(), ShareSubstring("XJohnX", "johnny"))
	require.False(s.T(), ShareSubstring("Rahul Gupta", "Meera Nair"))
	require.False(s.T(), ShareSubstring("abc", "abc"))
}

func (s *NameMatchTestSuite) TestMatcherStrictness() {
	// Tokens share nothing but the raw strings share "rtin"
	a, b := "Martinez", "xx Kirtin"
	require.Equal(s.T(), Mismatched, Match(a, b))
	require.Equal(s.T(), Mismatched, NewMatcher(Standard).Match(a, b))
	require.Equal(s.T(), Matched, NewMatcher(Lenient).Match(a, b))

	// Shared first token passes the token rules, not the strict comparison
	require.Equal(s.T(), Matched, NewMatcher(Standard).Match("Jon Smith", "Jon Doe"))
	require.Equal(s.T(), Mismatched, NewMatcher(Strict).Match("Jon Smith", "Jon Doe"))
	require.Equal(s.T(), Matched, NewMatcher(Strict).Match("Jon Smith", "jon smith"))
	require.Equal(s.T(), NotApplicable, NewMatcher(Strict).Match("", "jon smith"))
}

func (s *NameMatchTestSuite) TestParseStrictness() {
	v, err := ParseStrictness("")
	require.Nil(s.T(), err)
	require.Equal(s.T(), Lenient, v)

	v, err = ParseStrictness("STRICT")
	require.Nil(s.T(), err)
	require.Equal(s.T(), Strict, v)

	_, err = ParseStrictness("loose")
	require.NotNil(s.T(), err)
}
