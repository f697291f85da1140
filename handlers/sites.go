package handlers

import (
	"net/http"

	"chantierbook/auth"
)

func ListSitesHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	sites, err := svc.ListSites(sess)
	if err != nil {
		sendOperationError(w, r, err)
		return
	}
	sendData(w, sites)
}

func SelectSiteHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var input struct {
		SiteID string `json:"site_id"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if err := svc.SelectSite(sess, input.SiteID); err != nil {
		sendOperationError(w, r, err)
		return
	}
	auth.SetCurrentSite(w, r, input.SiteID)
	sendData(w, map[string]string{"site_id": input.SiteID})
}

func RenameSiteHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var input struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if err := svc.RenameSite(sess, input.Name); err != nil {
		sendOperationError(w, r, err)
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success"})
}

func DuplicateSiteHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	newID, err := svc.DuplicateSite(sess)
	if err != nil {
		sendOperationError(w, r, err)
		return
	}
	sendData(w, map[string]string{"site_id": newID})
}

func ArchiveSiteHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := svc.ArchiveSite(sess); err != nil {
		sendOperationError(w, r, err)
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success"})
}

func RestoreSitesHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := svc.RestoreAllSites(sess); err != nil {
		sendOperationError(w, r, err)
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success"})
}

func ToggleLockHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	locked, err := svc.ToggleLock(sess)
	if err != nil {
		sendOperationError(w, r, err)
		return
	}
	sendData(w, map[string]bool{"locked": locked})
}

func DeleteSiteHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	nextID, err := svc.DeleteSite(sess)
	if err != nil {
		sendOperationError(w, r, err)
		return
	}
	auth.SetCurrentSite(w, r, nextID)
	sendData(w, map[string]string{"site_id": nextID})
}
