package molecules

import (
	"net/http"
	"rxvision_server/api/middleware"
	"rxvision_server/handling"
	"rxvision_server/lib"
	"rxvision_server/structs"

	"github.com/MonkyMars/gecho"
)

func (mrm *MoleculeRoutesManager) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	body, err := lib.ExtractAndValidateBody[structs.CreateMoleculeGenerationRequest](r)
	if err != nil {
		handling.RespondError(err, "decode molecule generation body", mrm.logger, w)
		return
	}

	history, err := mrm.moleculeService.CreateHistory(r.Context(), claims.Sub, body)
	if err != nil {
		handling.RespondError(err, "create molecule generation", mrm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Molecule generation saved"),
		gecho.WithData(history),
		gecho.Send(),
	)
}

func (mrm *MoleculeRoutesManager) HandleList(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	histories, err := mrm.moleculeService.ListHistoryByUser(r.Context(), claims.Sub)
	if err != nil {
		handling.HandleError(err, "list molecule generations", mrm.logger, w)
		return
	}

	gecho.Success(w, gecho.WithData(histories), gecho.Send())
}

func (mrm *MoleculeRoutesManager) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		gecho.BadRequest(w, gecho.WithMessage("Invalid history id"), gecho.Send())
		return
	}
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	history, err := mrm.moleculeService.GetHistoryByID(r.Context(), claims.Sub, id)
	if err != nil {
		handling.RespondError(err, "get molecule generation", mrm.logger, w)
		return
	}

	gecho.Success(w, gecho.WithData(history), gecho.Send())
}

func (mrm *MoleculeRoutesManager) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		gecho.BadRequest(w, gecho.WithMessage("Invalid history id"), gecho.Send())
		return
	}
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	deleted, err := mrm.moleculeService.DeleteHistory(r.Context(), claims.Sub, id)
	if err != nil {
		handling.RespondError(err, "delete molecule generation", mrm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Molecule generation deleted"),
		gecho.WithData(deleted),
		gecho.Send(),
	)
}
