package groups

import (
	"net/http"
	"rxvision_server/api/middleware"
	"rxvision_server/handling"
	"rxvision_server/lib"
	"rxvision_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

func (grm *GroupRoutesManager) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	body, err := lib.ExtractAndValidateBody[structs.CreateGroupRequest](r)
	if err != nil {
		handling.RespondError(err, "decode create group body", grm.logger, w)
		return
	}

	group, err := grm.groupService.CreateGroup(r.Context(), body.Name, claims.Sub, body.MemberIds)
	if err != nil {
		handling.RespondError(err, "create group", grm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Group created"),
		gecho.WithData(group),
		gecho.Send(),
	)
}

// HandleListGroups returns the caller's groups, or every group with ?scope=all
func (grm *GroupRoutesManager) HandleListGroups(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	var (
		groups any
		err    error
	)
	if r.URL.Query().Get("scope") == "all" {
		groups, err = grm.groupService.GetAllGroups(r.Context())
	} else {
		groups, err = grm.groupService.ListGroupsForUser(r.Context(), claims.Sub)
	}
	if err != nil {
		handling.HandleError(err, "list groups", grm.logger, w)
		return
	}

	gecho.Success(w, gecho.WithData(groups), gecho.Send())
}

func (grm *GroupRoutesManager) HandleGetGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	group, err := grm.groupService.GetGroupByID(r.Context(), id)
	if err != nil {
		handling.RespondError(err, "get group", grm.logger, w)
		return
	}

	gecho.Success(w, gecho.WithData(group), gecho.Send())
}

func (grm *GroupRoutesManager) HandleRenameGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.RenameGroupRequest](r)
	if err != nil {
		handling.RespondError(err, "decode rename group body", grm.logger, w)
		return
	}

	group, err := grm.groupService.RenameGroup(r.Context(), id, body.Name)
	if err != nil {
		handling.RespondError(err, "rename group", grm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Group renamed"),
		gecho.WithData(group),
		gecho.Send(),
	)
}

func (grm *GroupRoutesManager) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	if err := grm.groupService.DeleteGroup(r.Context(), id, claims.Sub); err != nil {
		handling.RespondError(err, "delete group", grm.logger, w)
		return
	}

	gecho.Success(w, gecho.WithMessage("Group deleted"), gecho.Send())
}

func (grm *GroupRoutesManager) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.AddMemberRequest](r)
	if err != nil {
		handling.RespondError(err, "decode add member body", grm.logger, w)
		return
	}

	group, err := grm.groupService.AddMemberToGroup(r.Context(), id, body.UserId)
	if err != nil {
		handling.RespondError(err, "add member", grm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Member added"),
		gecho.WithData(group),
		gecho.Send(),
	)
}

func (grm *GroupRoutesManager) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}
	userID, err := handling.ParseUUIDParam(r, "userId")
	if err != nil {
		gecho.BadRequest(w, gecho.WithMessage("Invalid user id"), gecho.Send())
		return
	}

	group, err := grm.groupService.RemoveMemberFromGroup(r.Context(), id, userID)
	if err != nil {
		handling.RespondError(err, "remove member", grm.logger, w)
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Member removed"),
		gecho.WithData(group),
		gecho.Send(),
	)
}

func (grm *GroupRoutesManager) HandleAddMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	body, err := lib.ExtractAndValidateBody[structs.AddMessageRequest](r)
	if err != nil {
		handling.RespondError(err, "decode add message body", grm.logger, w)
		return
	}

	msg, err := grm.groupService.AddMessageToGroup(r.Context(), id, claims.Sub, body.Text)
	if err != nil {
		handling.RespondError(err, "add message", grm.logger, w)
		return
	}

	gecho.Success(w, gecho.WithData(msg), gecho.Send())
}

func (grm *GroupRoutesManager) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	msgs, err := grm.groupService.GetGroupMessages(r.Context(), id)
	if err != nil {
		handling.RespondError(err, "list messages", grm.logger, w)
		return
	}

	gecho.Success(w, gecho.WithData(msgs), gecho.Send())
}

func groupID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := handling.ParseUUIDParam(r, "id")
	if err != nil {
		gecho.BadRequest(w, gecho.WithMessage("Invalid group id"), gecho.Send())
		return uuid.Nil, false
	}
	return id, true
}
