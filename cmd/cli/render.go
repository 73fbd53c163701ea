package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/sangmo-land/BBinance-sub001/internal/domain"
	"github.com/sangmo-land/BBinance-sub001/internal/usecase"
)

const timeLayout = "2006-01-02 15:04:05"

func (c *cli) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
}

func (c *cli) renderAccounts(accounts []*domain.Account) {
	if c.asJSON {
		printJSON(c.out, accounts)
		return
	}

	w := c.table()
	fmt.Fprintln(w, "ID\tNUMBER\tUSER\tCATEGORY\tCURRENCY\tBALANCE\tACTIVE")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%v\n",
			a.ID, a.Number, truncate(a.UserID, 24), a.Category, a.Currency, a.Balance.String(), a.Active)
	}
	_ = w.Flush()
}

func (c *cli) renderBalances(balances []*domain.Balance) {
	if c.asJSON {
		printJSON(c.out, balances)
		return
	}

	w := c.table()
	fmt.Fprintln(w, "WALLET\tCURRENCY\tKIND\tAMOUNT\tVERSION\tUPDATED")
	for _, b := range balances {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			b.WalletType, b.Currency, b.Kind, b.Amount.String(), b.Version, b.UpdatedAt.Format(timeLayout))
	}
	_ = w.Flush()
}

func (c *cli) renderTransactions(records []*domain.Transaction) {
	if c.asJSON {
		printJSON(c.out, records)
		return
	}

	w := c.table()
	fmt.Fprintln(w, "REFERENCE\tTYPE\tFROM\tTO\tAMOUNT\tRATE\tCONVERTED\tSOURCE\tSTATUS\tDESCRIPTION")
	for _, t := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s %s\t%s\t%s %s\t%s\t%s\t%s\n",
			t.Reference, t.Type, optional(t.FromAccountID), optional(t.ToAccountID),
			t.Amount.String(), t.FromCurrency, t.ExchangeRate.String(),
			t.ConvertedAmount.String(), t.ToCurrency, t.RateSource, t.Status,
			truncate(t.Description, 32))
	}
	_ = w.Flush()
}

func (c *cli) renderRates(rates []*domain.ExchangeRate) {
	if c.asJSON {
		printJSON(c.out, rates)
		return
	}

	w := c.table()
	fmt.Fprintln(w, "PAIR\tRATE\tACTIVE\tUPDATED")
	for _, r := range rates {
		fmt.Fprintf(w, "%s/%s\t%s\t%v\t%s\n",
			r.FromCurrency, r.ToCurrency, r.Rate.String(), r.Active, r.UpdatedAt.Format(timeLayout))
	}
	_ = w.Flush()
}

func (c *cli) renderQuote(q *usecase.Quote) {
	if c.asJSON {
		printJSON(c.out, q)
		return
	}

	fmt.Fprintf(c.out, "%s %s = %s %s (rate %s, %s)\n",
		q.Amount.String(), q.FromCurrency, q.ConvertedAmount.String(), q.ToCurrency, q.Rate.String(), q.Source)
}

func (c *cli) renderReport(report *usecase.ReconciliationReport) {
	if c.asJSON {
		printJSON(c.out, report)
		return
	}

	fmt.Fprintf(c.out, "checked %d accounts, %d reconciled, %d discrepancies\n",
		report.TotalAccounts, report.ReconciledAccounts, len(report.Discrepancies))
	if len(report.Discrepancies) == 0 {
		return
	}

	w := c.table()
	fmt.Fprintln(w, "ACCOUNT\tCURRENCY\tRECORDED\tCALCULATED\tDIFFERENCE")
	for _, d := range report.Discrepancies {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			d.AccountNumber, d.Currency, d.RecordedBalance.String(), d.CalculatedBalance.String(), d.Difference.String())
	}
	_ = w.Flush()
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
