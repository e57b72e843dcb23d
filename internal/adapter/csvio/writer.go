package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/iho/txengine/internal/domain"
)

var accountHeader = []string{"client", "available", "held", "total", "locked"}

// WriteAccounts writes one row per account, in the order given, after a
// header row. Balances are written with four fractional digits.
func WriteAccounts(w io.Writer, accounts []domain.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(accountHeader); err != nil {
		return err
	}

	for _, acc := range accounts {
		row := []string{
			strconv.FormatUint(uint64(acc.ClientID), 10),
			domain.FormatMoney(acc.Available),
			domain.FormatMoney(acc.Held),
			domain.FormatMoney(acc.Total),
			strconv.FormatBool(acc.Locked),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
