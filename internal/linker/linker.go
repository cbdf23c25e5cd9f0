// Package linker resolves references between legacy records by legacy id and
// derives the normalized loan enums.
package linker

import (
	"fmt"

	"github.com/vvka-141/pmig/pkg/pmig"
)

// Unresolved is a reference whose legacy id is absent from the index.
// The record is kept with Ref.Resolved=false so it can be audited.
type Unresolved struct {
	Table    pmig.Table
	LegacyID int64
	Field    string
	RefID    int64
}

func (u Unresolved) String() string {
	return fmt.Sprintf("%s %d: %s %d not found", u.Table, u.LegacyID, u.Field, u.RefID)
}

// Result holds linked copies of the input records.
type Result struct {
	Loans      []*pmig.LoanRecord
	Payments   []*pmig.PaymentRecord
	Unresolved []Unresolved
}

// Link resolves loan->client and payment->loan references against ix and
// derives the loan enums. Inputs are not modified; the result holds copies.
func Link(ix *Index, loans []*pmig.LoanRecord, payments []*pmig.PaymentRecord) Result {
	res := Result{
		Loans:    make([]*pmig.LoanRecord, 0, len(loans)),
		Payments: make([]*pmig.PaymentRecord, 0, len(payments)),
	}

	for _, l := range loans {
		linked := *l
		linked.Warnings = cloneStrings(l.Warnings)
		linked.Estado = DeriveEstado(l.Saldado, l.Status)
		linked.Frecuencia = DeriveFrecuencia(l.DiasPago)

		_, ok := ix.Client(l.ClientRef.LegacyID)
		linked.ClientRef.Resolved = ok
		if !ok {
			res.Unresolved = append(res.Unresolved, Unresolved{
				Table:    pmig.TablePrestamos,
				LegacyID: l.ID,
				Field:    "cliente_id",
				RefID:    l.ClientRef.LegacyID,
			})
		}
		res.Loans = append(res.Loans, &linked)
	}

	for _, p := range payments {
		linked := *p
		linked.Warnings = cloneStrings(p.Warnings)

		loan, ok := ix.Loan(p.LoanRef.LegacyID)
		linked.LoanRef.Resolved = ok
		if ok {
			linked.Frecuencia = DeriveFrecuencia(loan.DiasPago)
		} else {
			linked.Frecuencia = ""
			res.Unresolved = append(res.Unresolved, Unresolved{
				Table:    pmig.TablePagos,
				LegacyID: p.ID,
				Field:    "prestamo_id",
				RefID:    p.LoanRef.LegacyID,
			})
		}
		res.Payments = append(res.Payments, &linked)
	}

	return res
}

// DeriveEstado maps the legacy saldado/status flags: a settled loan is
// completado whatever its status, status 2 is vencido, anything else activo.
func DeriveEstado(saldado, status int64) pmig.LoanStatus {
	switch {
	case saldado == 1:
		return pmig.EstadoCompletado
	case status == 2:
		return pmig.EstadoVencido
	default:
		return pmig.EstadoActivo
	}
}

// DeriveFrecuencia maps the legacy payment interval in days. Unknown
// intervals are weekly, the back office's default plan.
func DeriveFrecuencia(diasPago int64) pmig.Frequency {
	switch diasPago {
	case 1:
		return pmig.FrecuenciaDiario
	case 15:
		return pmig.FrecuenciaQuincenal
	case 30:
		return pmig.FrecuenciaMensual
	default:
		return pmig.FrecuenciaSemanal
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
