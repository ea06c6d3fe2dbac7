package auth

import (
	"net/http"
	"rxvision_server/handling"
	"rxvision_server/structs"
	"strings"
)

func (arm *AuthRoutesManager) HandleProviders(w http.ResponseWriter, r *http.Request) {
	base := strings.TrimRight(arm.cfg.Server.PublicBaseURL, "/") + "/api/auth"
	handling.WriteJSON(w, http.StatusOK, map[string]structs.ProviderInfo{
		"credentials": {
			Id:          "credentials",
			Name:        "Credentials",
			Type:        "credentials",
			SigninUrl:   base + "/signin/credentials",
			CallbackUrl: base + "/callback/credentials",
		},
	})
}
