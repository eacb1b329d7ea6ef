package syntax

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func firstXact(t *testing.T, tree *Tree) *Node {
	t.Helper()
	xact := tree.Root().Child(0).Child(0)
	assert.Equal(t, KindXact, xact.Kind)
	return xact.Child(0)
}

func TestParsePlainXactHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{
			name:  "DateOnly",
			input: "2024-01-05\n",
			expected: map[string]string{
				KindDate: "2024-01-05",
			},
		},
		{
			name:  "DateAndPayee",
			input: "2024/01/05 Grocery Store\n",
			expected: map[string]string{
				KindDate:  "2024/01/05",
				KindPayee: "Grocery Store",
			},
		},
		{
			name:  "EffectiveDate",
			input: "2024-01-05=2024-01-10 Acme\n",
			expected: map[string]string{
				KindDate:          "2024-01-05",
				KindEffectiveDate: "2024-01-10",
				KindPayee:         "Acme",
			},
		},
		{
			name:  "StatusAndCode",
			input: "2024-01-05 ! (INV-1) Acme\n",
			expected: map[string]string{
				KindDate:   "2024-01-05",
				KindStatus: "!",
				KindCode:   "(INV-1)",
				KindPayee:  "Acme",
			},
		},
		{
			name:  "HeaderNote",
			input: "2024-01-05 * Acme ; overdue\n",
			expected: map[string]string{
				KindDate:   "2024-01-05",
				KindStatus: "*",
				KindPayee:  "Acme",
				KindNote:   "; overdue",
			},
		},
		{
			name:  "SemicolonInsideQuotesIsNotANote",
			input: "2024-01-05 \"a;b\" store\n",
			expected: map[string]string{
				KindDate:  "2024-01-05",
				KindPayee: "\"a;b\" store",
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tree := mustParse(t, test.input)
			assert.False(t, tree.HasError())

			xact := firstXact(t, tree)
			assert.Equal(t, KindPlainXact, xact.Kind)

			for kind, text := range test.expected {
				child := xact.FirstChild(kind)
				assert.NotZero(t, child, "missing %s", kind)
				assert.Equal(t, text, child.Text(tree.Source()))
			}
			for _, child := range xact.NamedChildren() {
				if _, ok := test.expected[child.Kind]; !ok {
					t.Errorf("unexpected child %s %q", child.Kind, child.Text(tree.Source()))
				}
			}
		})
	}
}

func TestParseConditionalXactHeaders(t *testing.T) {
	t.Run("Periodic", func(t *testing.T) {
		tree := mustParse(t, "~ monthly from 2024-01-01 ; budget\n")
		xact := firstXact(t, tree)
		assert.Equal(t, KindPeriodicXact, xact.Kind)
		assert.Equal(t, "monthly from 2024-01-01", xact.FirstChild(KindInterval).Text(tree.Source()))
		assert.Equal(t, "; budget", xact.FirstChild(KindNote).Text(tree.Source()))
	})

	t.Run("Automated", func(t *testing.T) {
		tree := mustParse(t, "= expr amount > 100\n")
		xact := firstXact(t, tree)
		assert.Equal(t, KindAutomatedXact, xact.Kind)
		assert.Equal(t, "expr amount > 100", xact.FirstChild(KindQuery).Text(tree.Source()))
	})
}

func TestParseXactBody(t *testing.T) {
	input := "2024-01-05 Payee\n" +
		"  ; a note\n" +
		"  Assets:Checking  100.00 USD\n" +
		"  Expenses:Food\n" +
		"\n" +
		"; not part of the transaction\n"
	tree := mustParse(t, input)
	assert.False(t, tree.HasError())

	xact := firstXact(t, tree)
	var kinds []string
	for _, child := range xact.NamedChildren() {
		kinds = append(kinds, child.Kind)
	}
	assert.Equal(t, []string{KindDate, KindPayee, KindNote, KindPosting, KindPosting}, kinds)

	// The body ends at the blank line; the trailing comment is a separate
	// top-level item.
	assert.Equal(t, 3, len(tree.Root().Children))
}

func TestParsePosting(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		account  string
		quantity string
		qtyKind  string
	}{
		{
			name:     "DoubleSpaceSeparator",
			input:    "  Assets:Checking  100.00 USD\n",
			account:  "Assets:Checking",
			quantity: "100.00",
			qtyKind:  KindQuantity,
		},
		{
			name:     "TabSeparator",
			input:    "\tAssets:Checking\t100.00 USD\n",
			account:  "Assets:Checking",
			quantity: "100.00",
			qtyKind:  KindQuantity,
		},
		{
			name:     "NegativeQuantity",
			input:    "  Assets:Checking  -100.00 USD\n",
			account:  "Assets:Checking",
			quantity: "-100.00",
			qtyKind:  KindNegativeQuantity,
		},
		{
			name:     "AccountWithSingleSpaces",
			input:    "  Assets:Savings Account  5 USD\n",
			account:  "Assets:Savings Account",
			quantity: "5",
			qtyKind:  KindQuantity,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tree := mustParse(t, "2024-01-05 Payee\n"+test.input)
			assert.False(t, tree.HasError())

			posting := firstXact(t, tree).FirstChild(KindPosting)
			assert.NotZero(t, posting)
			assert.Equal(t, test.account, posting.FirstChild(KindAccount).Text(tree.Source()))

			amount := posting.FirstChild(KindAmount)
			assert.NotZero(t, amount)
			quantity := amount.FirstChild(test.qtyKind)
			assert.NotZero(t, quantity)
			assert.Equal(t, test.quantity, quantity.Text(tree.Source()))
		})
	}
}

func TestParsePostingFields(t *testing.T) {
	input := "2024-01-05 Payee\n" +
		"  * Assets:Brokerage  10 AAPL @ 150.00 USD = 1500.00 USD ; lot\n"
	tree := mustParse(t, input)
	assert.False(t, tree.HasError())

	posting := firstXact(t, tree).FirstChild(KindPosting)
	assert.NotZero(t, posting)

	assert.Equal(t, "*", posting.FirstChild(KindStatus).Text(tree.Source()))
	assert.Equal(t, "Assets:Brokerage", posting.FirstChild(KindAccount).Text(tree.Source()))

	amount := posting.FirstChild(KindAmount)
	assert.NotZero(t, amount)
	assert.Equal(t, "AAPL", amount.FirstChild(KindCommodity).Text(tree.Source()))

	price := posting.FirstChild(KindPrice)
	assert.NotZero(t, price)
	assert.Equal(t, "@", price.Child(0).Text(tree.Source()))
	assert.Equal(t, "150.00", price.FirstChild(KindAmount).FirstChild(KindQuantity).Text(tree.Source()))

	assertion := posting.FirstChild(KindBalanceAssertion)
	assert.NotZero(t, assertion)
	assert.Equal(t, "1500.00", assertion.FirstChild(KindAmount).FirstChild(KindQuantity).Text(tree.Source()))

	note := posting.FirstChild(KindNote)
	assert.NotZero(t, note)
	assert.Equal(t, "; lot", note.Text(tree.Source()))
}

func TestParseTotalPriceMarker(t *testing.T) {
	tree := mustParse(t, "2024-01-05 Payee\n  Assets:B  10 AAPL @@ 1500.00 USD\n")
	assert.False(t, tree.HasError())

	price := firstXact(t, tree).FirstChild(KindPosting).FirstChild(KindPrice)
	assert.NotZero(t, price)
	assert.Equal(t, "@@", price.Child(0).Text(tree.Source()))
}

func TestParseAmountForms(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		commodity string
	}{
		{name: "TrailingCommodity", input: "  A  100.00 USD\n", commodity: "USD"},
		{name: "LeadingCommodity", input: "  A  $100.00\n", commodity: "$"},
		{name: "QuotedCommodity", input: "  A  2 \"VTI ETF\"\n", commodity: "\"VTI ETF\""},
		{name: "BareQuantity", input: "  A  42\n", commodity: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tree := mustParse(t, "2024-01-05 P\n"+test.input)
			assert.False(t, tree.HasError())

			amount := firstXact(t, tree).FirstChild(KindPosting).FirstChild(KindAmount)
			assert.NotZero(t, amount)

			commodity := amount.FirstChild(KindCommodity)
			if test.commodity == "" {
				assert.Zero(t, commodity)
			} else {
				assert.NotZero(t, commodity)
				assert.Equal(t, test.commodity, commodity.Text(tree.Source()))
			}
		})
	}
}

func TestParsePostingErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "TrailingGarbage", input: "  A  1 USD extra\n"},
		{name: "TwoCommodities", input: "  A  $1 USD\n"},
		{name: "CommodityWithoutQuantity", input: "  A  USD\n"},
		{name: "DanglingPrice", input: "  A  1 USD @\n"},
		{name: "DanglingAssertion", input: "  A  1 USD =\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tree := mustParse(t, "2024-01-05 P\n"+test.input)
			assert.True(t, tree.HasError())

			posting := firstXact(t, tree).FirstChild(KindError)
			assert.NotZero(t, posting)
			assert.Equal(t, 1, posting.Pos.Row)
		})
	}
}
