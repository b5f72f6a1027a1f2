package mediahandlers

import (
	"io"
	"net/http"

	"github.com/The127/ioc"
	"github.com/gorilla/mux"
	"github.com/podhaven/podhaven/internal/middlewares"
	"github.com/podhaven/podhaven/internal/services/audiostore"
	"github.com/podhaven/podhaven/internal/utils"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

// DownloadAudio serves an object by key. It backs the playback urls of
// the memory and directory audio store modes, where no external store
// can serve the bytes itself.
func DownloadAudio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middlewares.GetScope(ctx)

	vars := mux.Vars(r)
	key := vars["key"]

	audioStore := ioc.GetDependency[audiostore.Service](scope)

	content, err := audioStore.Download(ctx, key)
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}
	defer utils.IgnoreError(content.Close)

	w.Header().Set("Content-Type", "audio/mpeg")
	_, err = io.Copy(w, content)
	if err != nil {
		apiError.HandleHttpError(w, err)
		return
	}
}
