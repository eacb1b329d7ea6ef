package beautifier

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestBeautifyDirectives(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "AccountWithNote",
			input:    "account Assets:Checking\n    note Primary account\n",
			expected: "account Assets:Checking\n  note Primary account\n",
		},
		{
			name: "AccountAllSubdirectives",
			input: "account Expenses:Food\n" +
				"\tnote Dining and groceries\n" +
				"   alias food\n" +
				"   payee ^(.*) Restaurant$\n" +
				"   check commodity == \"USD\"\n" +
				"   assert commodity == \"USD\"\n" +
				"   default\n",
			expected: "account Expenses:Food\n" +
				"  note Dining and groceries\n" +
				"  alias food\n" +
				"  payee ^(.*) Restaurant$\n" +
				"  check commodity == \"USD\"\n" +
				"  assert commodity == \"USD\"\n" +
				"  default\n",
		},
		{
			name: "AccountUnknownSubdirectiveDropped",
			input: "account Assets:Cash\n" +
				"  eval print(1)\n" +
				"  note Petty cash\n",
			expected: "account Assets:Cash\n  note Petty cash\n",
		},
		{
			name:     "CommodityWithFormat",
			input:    "commodity USD\n   format 1,000.00 USD\n",
			expected: "commodity USD\n  format 1,000.00 USD\n",
		},
		{
			name:     "CommodityFormatNegative",
			input:    "commodity EUR\n  format -1.000,00 EUR\n",
			expected: "commodity EUR\n  format -1.000,00 EUR\n",
		},
		{
			name: "CommodityAllSubdirectives",
			input: "commodity CAD\n" +
				"    note Canadian dollar\n" +
				"    alias C$\n" +
				"    nomarket\n" +
				"    default\n",
			expected: "commodity CAD\n" +
				"  note Canadian dollar\n" +
				"  alias C$\n" +
				"  nomarket\n" +
				"  default\n",
		},
		{
			name:     "TagWithAssertAndCheck",
			input:    "tag Receipt\n    assert value > 0\n    check value =~ /r/\n",
			expected: "tag Receipt\n  assert value > 0\n  check value =~ /r/\n",
		},
		{
			name:     "WordDirectiveCollapsesSpacing",
			input:    "include    path/to/file.ledger\n",
			expected: "include path/to/file.ledger\n",
		},
		{
			name:     "ApplyDirective",
			input:    "apply   account   Expenses\n",
			expected: "apply account Expenses\n",
		},
		{
			name:     "CharDirectiveGluedArgument",
			input:    "Y2024\n",
			expected: "Y2024\n",
		},
		{
			name:     "PriceHistoryDirective",
			input:    "P 2024/01/01  AAPL   150.00 USD\n",
			expected: "P 2024/01/01 AAPL 150.00 USD\n",
		},
		{
			name:     "OptionPreservedVerbatim",
			input:    "option --wide   extra\n",
			expected: "option --wide   extra\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := Beautify([]byte(test.input))
			assert.NoError(t, err)
			assert.Equal(t, test.expected, result)
		})
	}
}

func TestBeautifyCommentsAndBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "AllCommentMarkers",
			input:    "; one\n# two\n% three\n| four\n* five\n",
			expected: "; one\n# two\n% three\n| four\n* five\n",
		},
		{
			name:     "IndentedCommentLosesIndent",
			input:    "   ; indented\n",
			expected: "; indented\n",
		},
		{
			name:     "BlockComment",
			input:    "comment\n  anything ; goes\nend comment\n",
			expected: "comment\n  anything ; goes\nend comment\n",
		},
		{
			name:     "BlockTest",
			input:    "test balance\n  $100\nend test\n",
			expected: "test balance\n  $100\nend test\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := Beautify([]byte(test.input))
			assert.NoError(t, err)
			assert.Equal(t, test.expected, result)
		})
	}
}

func TestBeautifyBlankLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "RunCollapsesToOne",
			input:    "account Assets:A\n\n\n\naccount Assets:B\n",
			expected: "account Assets:A\n\naccount Assets:B\n",
		},
		{
			name:     "SingleBlankKept",
			input:    "; a\n\n; b\n",
			expected: "; a\n\n; b\n",
		},
		{
			name:     "LeadingBlanksDropped",
			input:    "\n\n; hello\n",
			expected: "; hello\n",
		},
		{
			name:     "WhitespaceOnlyLinesAreBlank",
			input:    "; a\n   \n\t\n; b\n",
			expected: "; a\n\n; b\n",
		},
		{
			name:     "TrailingBlankCollapses",
			input:    "; a\n\n\n",
			expected: "; a\n\n",
		},
		{
			name:     "MissingFinalNewlineAdded",
			input:    "; a",
			expected: "; a\n",
		},
		{
			name:     "EmptyInput",
			input:    "",
			expected: "",
		},
		{
			name:     "OnlyBlankLines",
			input:    "\n\n\n",
			expected: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := Beautify([]byte(test.input))
			assert.NoError(t, err)
			assert.Equal(t, test.expected, result)
		})
	}
}

func TestBeautifySyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{
			name:  "UnknownDirective",
			input: "qwerty stuff\n",
			line:  1,
		},
		{
			name:  "ErrorAfterValidLine",
			input: "account Assets:A\nqwerty stuff\n",
			line:  2,
		},
		{
			name:  "OrphanIndentedLine",
			input: "  orphan posting\n",
			line:  1,
		},
		{
			name:  "UnterminatedBlockComment",
			input: "comment\nnever closed\n",
			line:  1,
		},
		{
			name:  "MalformedPostingAmount",
			input: "2024-01-05 Payee\n  Assets:Cash  12..0 garbage here\n",
			line:  2,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := Beautify([]byte(test.input))
			assert.Equal(t, "", result)

			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr))
			assert.Equal(t, test.line, syntaxErr.Line)
			assert.Contains(t, err.Error(), "Parsed file contains errors")
		})
	}
}

func TestBeautifyErrorProducesNoOutput(t *testing.T) {
	var buf bytes.Buffer
	err := BeautifyTo(&buf, []byte("; fine\nqwerty stuff\n; also fine\n"))
	assert.Error(t, err)
	assert.Equal(t, 0, buf.Len())
}

func TestBeautifyInvalidEncoding(t *testing.T) {
	_, err := Beautify([]byte{0x32, 0x30, 0xff, 0xfe})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse file")
}

func TestBeautifyStreamMatchesString(t *testing.T) {
	input := []byte("account Assets:A\n  note primary\n\n\n2024-01-05 * Payee\n  Assets:A  1.00 USD\n  Assets:B\n")

	fromString, err := Beautify(input)
	assert.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, BeautifyTo(&buf, input))
	assert.Equal(t, fromString, buf.String())
}

func TestBeautifyIdempotent(t *testing.T) {
	inputs := []string{
		"account Assets:Checking\n    note Primary account\n",
		"commodity USD\n format 1,000.00 USD\n nomarket\n",
		"tag Receipt\n  assert value > 0\n",
		"; comment\n\n\ninclude   other.ledger\n",
		"2024-01-05 * Grocery Store\n    Assets:Checking   100.00 USD\n    Expenses:Food\n",
		"2024/01/05=2024/01/10 ! (INV-1) Acme Corp ; overdue\n  Expenses:Services  150.00 USD\n  Assets:Checking\n",
		"~ monthly ; budget\n  Expenses:Rent  1200.00 USD\n  Assets:Checking\n",
		"= expr amount > 100\n  (Budget:Big)  1\n",
		"2024-01-05 Broker\n  Assets:Brokerage  10 AAPL @ 150.00 USD\n  Assets:Checking  -1500.00 USD = 0.00 USD\n",
		"2024-01-05 Cash\n  * Assets:Cash  $100.00\n  ; a body note\n",
		"Y2024\nP 2024/01/01 AAPL 150.00 USD\n",
		"comment\n  raw text\nend comment\n",
	}

	for _, input := range inputs {
		first, err := Beautify([]byte(input))
		assert.NoError(t, err, "input %q", input)

		second, err := Beautify([]byte(first))
		assert.NoError(t, err, "first pass %q", first)
		assert.Equal(t, first, second, "input %q", input)
	}
}

func TestBeautifyFullJournal(t *testing.T) {
	input := strings.Join([]string{
		"; -*- ledger -*-",
		"",
		"",
		"Y2024",
		"account Assets:Checking",
		"    note Primary account",
		"",
		"2024-01-05 * Grocery Store",
		"    Assets:Checking   -100.00 USD",
		"    Expenses:Food      100.00 USD",
		"",
	}, "\n")

	expected := strings.Join([]string{
		"; -*- ledger -*-",
		"",
		"Y2024",
		"account Assets:Checking",
		"  note Primary account",
		"",
		"2024-01-05 * Grocery Store",
		"  Assets:Checking" + strings.Repeat(" ", 35) + "-100.00 USD",
		"  Expenses:Food" + strings.Repeat(" ", 38) + "100.00 USD",
		"",
	}, "\n")

	result, err := Beautify([]byte(input))
	assert.NoError(t, err)
	assert.Equal(t, expected, result)
}
