package handlers

import (
	"net/http"

	"chantierbook/ledger"
)

func IndicatorsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	site, err := svc.SiteView(sess)
	if err != nil {
		sendOperationError(w, r, err)
		return
	}
	sendData(w, ledger.ComputeIndicators(site))
}

func InventoryHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	site, err := svc.SiteView(sess)
	if err != nil {
		sendOperationError(w, r, err)
		return
	}
	sendData(w, ledger.ComputeInventory(site))
}
