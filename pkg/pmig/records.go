package pmig

import (
	"strconv"
	"time"
)

// Record is a typed legacy row built from one tuple.
type Record interface {
	// Table returns the legacy table the record was built from.
	Table() Table

	// LegacyID returns the autoincrement id the legacy system assigned.
	LegacyID() int64

	// NaturalKeys returns the business keys used for idempotent matching,
	// in priority order. Never empty: records without a usable business key
	// fall back to their legacy id.
	NaturalKeys() []NaturalKey

	// RecordWarnings returns coercion warnings raised while building.
	RecordWarnings() []string
}

// NaturalKey is one business-identifying column value.
type NaturalKey struct {
	Field string
	Value string
}

func (k NaturalKey) String() string { return k.Field + "=" + k.Value }

// Natural key field names understood by every Store.
const (
	KeyCedula   = "cedula"
	KeyTelefono = "telefono"
	KeyCodigo   = "codigo"
	KeyLegacyID = "legacy_id"
)

func legacyKey(id int64) NaturalKey {
	return NaturalKey{Field: KeyLegacyID, Value: strconv.FormatInt(id, 10)}
}

// Ref is a reference to another legacy record by legacy id.
// Resolved is false when the id was absent from the run's index;
// the legacy id is kept so the row can be audited.
type Ref struct {
	LegacyID int64
	Resolved bool
}

// LoanStatus is the normalized loan state.
type LoanStatus string

const (
	EstadoActivo     LoanStatus = "activo"
	EstadoCompletado LoanStatus = "completado"
	EstadoVencido    LoanStatus = "vencido"
)

// Frequency is the normalized payment frequency.
type Frequency string

const (
	FrecuenciaDiario    Frequency = "diario"
	FrecuenciaSemanal   Frequency = "semanal"
	FrecuenciaQuincenal Frequency = "quincenal"
	FrecuenciaMensual   Frequency = "mensual"
)

// ClientRecord is a row of the legacy clientes table.
type ClientRecord struct {
	ID            int64
	Nombre        string
	Apodo         string
	Telefono      string
	Direccion     string
	Zona          int64
	Ocupacion     string
	FechaRegistro time.Time
	ReferidoPor   int64
	Activo        int64
	Status        int64
	Cedula        string
	Celular       string
	Email         string
	Balance       float64
	Tipo          int64
	Usuario       string
	Warnings      []string
}

func (r *ClientRecord) Table() Table             { return TableClientes }
func (r *ClientRecord) LegacyID() int64          { return r.ID }
func (r *ClientRecord) RecordWarnings() []string { return r.Warnings }

// NaturalKeys returns cedula and telefono (either one identifies the client),
// falling back to celular when telefono is unusable.
func (r *ClientRecord) NaturalKeys() []NaturalKey {
	var keys []NaturalKey
	if v := NormalizeDigits(r.Cedula); v != "" {
		keys = append(keys, NaturalKey{Field: KeyCedula, Value: v})
	}
	tel := NormalizeDigits(r.Telefono)
	if tel == "" {
		tel = NormalizeDigits(r.Celular)
	}
	if tel != "" {
		keys = append(keys, NaturalKey{Field: KeyTelefono, Value: tel})
	}
	if len(keys) == 0 {
		keys = append(keys, legacyKey(r.ID))
	}
	return keys
}

// CollectorRecord is a row of the legacy cobradores table.
type CollectorRecord struct {
	ID           int64
	Nombre       string
	Telefono     string
	Direccion    string
	Cedula       string
	Zona         int64
	Comision     float64
	FechaIngreso time.Time
	Status       int64
	Usuario      string
	Celular      string
	Email        string
	Warnings     []string
}

func (r *CollectorRecord) Table() Table             { return TableCobradores }
func (r *CollectorRecord) LegacyID() int64          { return r.ID }
func (r *CollectorRecord) RecordWarnings() []string { return r.Warnings }

func (r *CollectorRecord) NaturalKeys() []NaturalKey {
	if v := NormalizeDigits(r.Cedula); v != "" {
		return []NaturalKey{{Field: KeyCedula, Value: v}}
	}
	return []NaturalKey{legacyKey(r.ID)}
}

// LoanRecord is a row of the legacy prestamos table.
type LoanRecord struct {
	ID            int64
	Codigo        string
	ClientRef     Ref
	CobradorID    int64
	Monto         float64
	Interes       float64
	Cuotas        int64
	MontoCuota    float64
	DiasPago      int64
	FechaInicio   time.Time
	FechaFin      time.Time
	Balance       float64
	TotalPagado   float64
	Mora          float64
	Saldado       int64
	Status        int64
	Nota          string
	Garante       string
	FechaRegistro time.Time
	Usuario       string
	Tipo          int64

	// Derived by the reference linker from the legacy flags.
	Estado     LoanStatus
	Frecuencia Frequency

	Warnings []string
}

func (r *LoanRecord) Table() Table             { return TablePrestamos }
func (r *LoanRecord) LegacyID() int64          { return r.ID }
func (r *LoanRecord) RecordWarnings() []string { return r.Warnings }

func (r *LoanRecord) NaturalKeys() []NaturalKey {
	if r.Codigo != "" {
		return []NaturalKey{{Field: KeyCodigo, Value: r.Codigo}}
	}
	return []NaturalKey{legacyKey(r.ID)}
}

// PaymentRecord is a row of the legacy pagos table.
type PaymentRecord struct {
	ID         int64
	LoanRef    Ref
	Monto      float64
	Fecha      time.Time
	CobradorID int64
	Mora       float64
	Nota       string
	Status     int64

	// Copied from the linked loan.
	Frecuencia Frequency

	Warnings []string
}

func (r *PaymentRecord) Table() Table             { return TablePagos }
func (r *PaymentRecord) LegacyID() int64          { return r.ID }
func (r *PaymentRecord) RecordWarnings() []string { return r.Warnings }

// NaturalKeys identifies payments by legacy id; the legacy schema has no
// business key for them.
func (r *PaymentRecord) NaturalKeys() []NaturalKey {
	return []NaturalKey{legacyKey(r.ID)}
}

// Entity is what the orchestrator hands to Store.Insert: a record plus the
// target ids of the records it references.
type Entity struct {
	Record Record

	// ClientID is the target id of a loan's client.
	ClientID int64

	// LoanID is the target id of a payment's loan.
	LoanID int64

	// CollectorID is the target id of the referenced collector, 0 when the
	// collector is unknown. Collector references are optional.
	CollectorID int64
}

// NormalizeDigits keeps only ASCII digits. Values made only of zeros are
// placeholders in the legacy data and normalize to "".
func NormalizeDigits(s string) string {
	out := make([]byte, 0, len(s))
	nonZero := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			out = append(out, c)
			if c != '0' {
				nonZero = true
			}
		}
	}
	if !nonZero {
		return ""
	}
	return string(out)
}
