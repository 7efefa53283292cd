package request

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medstock/medstock/internal/domain/catalog"
	"github.com/medstock/medstock/internal/domain/shared"
	"github.com/medstock/medstock/internal/platform/db"
)

type PatientInput struct {
	CURP            string `json:"curp"`
	FirstName       string `json:"nombre"`
	PaternalSurname string `json:"apellido_paterno"`
	MaternalSurname string `json:"apellido_materno"`
	Age             int    `json:"edad"`
	Gender          string `json:"sexo"`
}

type LineInput struct {
	ItemID       string `json:"id_insumo"`
	Presentation string `json:"presentacion"`
	Quantity     int    `json:"cantidad"`
}

type CreateInput struct {
	Patient       PatientInput `json:"paciente"`
	ServiceType   string       `json:"tipo_servicio"`
	ServiceSubID  int64        `json:"id_servicio"`
	RequesterName string       `json:"nombre_solicitante"`
	Diagnosis     string       `json:"diagnostico"`
	Priority      string       `json:"prioridad"`
	Lines         []LineInput  `json:"detalle"`
}

// FulfillLine carries the outcome for one request line. Justification is
// only meaningful on the rejected path.
type FulfillLine struct {
	ItemID        string `json:"id_insumo"`
	Supplied      int    `json:"cantidad_surtida"`
	Justification string `json:"justificacion"`
}

type Service struct {
	patients PatientRepository
	services ServiceRepository
	requests RequestRepository
	items    catalog.ItemRepository
	tx       db.TxRunner
	now      func() time.Time
}

func NewService(patients PatientRepository, services ServiceRepository, requests RequestRepository, items catalog.ItemRepository, tx db.TxRunner) *Service {
	return &Service{
		patients: patients,
		services: services,
		requests: requests,
		items:    items,
		tx:       tx,
		now:      time.Now,
	}
}

// Create opens a new pending request in one transaction. The patient is
// found or created by CURP; an existing patient keeps their stored
// demographics. Every line's item must exist in the catalog.
func (s *Service) Create(ctx context.Context, in *CreateInput) (int64, error) {
	curp := strings.ToUpper(strings.TrimSpace(in.Patient.CURP))
	if curp == "" {
		return 0, shared.Validationf("curp is required")
	}
	if len(in.Lines) == 0 {
		return 0, shared.Validationf("at least one line is required")
	}
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return 0, shared.Validationf("cantidad for item %s must be positive", line.ItemID)
		}
	}
	if in.ServiceType != ServiceAmbulatory && in.ServiceType != ServiceHospital {
		return 0, shared.Validationf("tipo_servicio must be %s or %s", ServiceAmbulatory, ServiceHospital)
	}

	var requestID int64
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		patientID, err := s.resolvePatient(ctx, curp, &in.Patient)
		if err != nil {
			return err
		}
		serviceID, err := s.services.Resolve(ctx, in.ServiceType, in.ServiceSubID)
		if err != nil {
			return err
		}

		for _, line := range in.Lines {
			exists, err := s.items.Exists(ctx, line.ItemID)
			if err != nil {
				return err
			}
			if !exists {
				return shared.Validationf("unknown item %s", line.ItemID)
			}
		}

		requestID, err = s.requests.Insert(ctx, &Request{
			PatientID:     patientID,
			ServiceID:     serviceID,
			RequesterName: strings.TrimSpace(in.RequesterName),
			Diagnosis:     strings.TrimSpace(in.Diagnosis),
			Priority:      strings.TrimSpace(in.Priority),
			Status:        StatusPending,
			CreatedAt:     s.now(),
		})
		if err != nil {
			return err
		}

		for _, line := range in.Lines {
			if err := s.requests.InsertLine(ctx, &Line{
				RequestID:         requestID,
				ItemID:            line.ItemID,
				Presentation:      strings.TrimSpace(line.Presentation),
				QuantityRequested: line.Quantity,
				QuantitySupplied:  0,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Int64("request_id", requestID).Str("curp", curp).Int("lines", len(in.Lines)).Msg("request created")
	return requestID, nil
}

func (s *Service) resolvePatient(ctx context.Context, curp string, in *PatientInput) (int64, error) {
	p, err := s.patients.GetByCURP(ctx, curp)
	if err == nil {
		return p.ID, nil
	}
	if !shared.IsKind(err, shared.KindNotFound) {
		return 0, err
	}
	return s.patients.Insert(ctx, &Patient{
		CURP:            curp,
		FirstName:       strings.TrimSpace(in.FirstName),
		PaternalSurname: strings.TrimSpace(in.PaternalSurname),
		MaternalSurname: strings.TrimSpace(in.MaternalSurname),
		Age:             in.Age,
		Gender:          strings.TrimSpace(in.Gender),
	})
}

// Fulfill closes a pending request to its final status in one transaction.
// Approved lines deduct stock floored at zero; a rejected request takes its
// batch justification from the first line and it must be one of the accepted
// values. The pending check is repeated by the closing update, so a
// concurrent fulfillment loses cleanly.
func (s *Service) Fulfill(ctx context.Context, requestID int64, lines []FulfillLine, finalStatus string) error {
	if finalStatus != StatusApproved && finalStatus != StatusRejected {
		return shared.Validationf("final status must be %s or %s", StatusApproved, StatusRejected)
	}
	if len(lines) == 0 {
		return shared.Validationf("at least one line is required")
	}
	for _, line := range lines {
		if line.Supplied < 0 {
			return shared.Validationf("cantidad_surtida for item %s must not be negative", line.ItemID)
		}
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		status, err := s.requests.GetStatus(ctx, requestID)
		if err != nil {
			return err
		}
		if status != StatusPending {
			return shared.InvalidTransitionf("request %d is already %s", requestID, status)
		}

		for _, line := range lines {
			if err := s.requests.SetLineSupplied(ctx, requestID, line.ItemID, line.Supplied, line.Justification); err != nil {
				return err
			}
			if finalStatus == StatusApproved {
				if err := s.items.DeductQuantity(ctx, line.ItemID, line.Supplied); err != nil {
					return err
				}
			}
		}

		justification := ""
		if finalStatus == StatusRejected {
			justification = lines[0].Justification
			if !ValidJustification(justification) {
				return shared.InvalidJustificationf("justification %q is not accepted", justification)
			}
		}

		closed, err := s.requests.Close(ctx, requestID, finalStatus, justification, s.now())
		if err != nil {
			return err
		}
		if !closed {
			return shared.InvalidTransitionf("request %d was closed concurrently", requestID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Int64("request_id", requestID).Str("status", finalStatus).Msg("request closed")
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*View, error) {
	return s.requests.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*View, int, error) {
	return s.requests.List(ctx, limit, offset)
}

func (s *Service) ListPending(ctx context.Context) ([]*View, error) {
	return s.requests.ListPending(ctx)
}

const patientSearchLimit = 5

func (s *Service) SearchPatients(ctx context.Context, fragment string) ([]*Patient, error) {
	fragment = strings.ToUpper(strings.TrimSpace(fragment))
	if fragment == "" {
		return nil, shared.Validationf("query must not be empty")
	}
	return s.patients.SearchByCURP(ctx, fragment, patientSearchLimit)
}

func (s *Service) ListServices(ctx context.Context) ([]*ServiceView, error) {
	return s.services.List(ctx)
}
