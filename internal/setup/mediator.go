package setup

import (
	"github.com/The127/ioc"
	"github.com/The127/mediatr"
	"github.com/podhaven/podhaven/internal/commands"
	"github.com/podhaven/podhaven/internal/queries"
)

func Mediator(dc *ioc.DependencyCollection) {
	mediator := mediatr.NewMediator()

	mediatr.RegisterHandler(mediator, commands.HandleCreatePodcast)
	mediatr.RegisterHandler(mediator, commands.HandlePatchPodcast)
	mediatr.RegisterHandler(mediator, commands.HandleDeletePodcast)
	mediatr.RegisterHandler(mediator, queries.HandleListPodcasts)
	mediatr.RegisterHandler(mediator, queries.HandleGetPodcast)

	mediatr.RegisterHandler(mediator, commands.HandleAddEpisode)
	mediatr.RegisterHandler(mediator, commands.HandleReplaceEpisodeAudio)
	mediatr.RegisterHandler(mediator, commands.HandleDeleteEpisode)
	mediatr.RegisterHandler(mediator, commands.HandleRecordPlay)
	mediatr.RegisterHandler(mediator, queries.HandleGetEpisode)
	mediatr.RegisterHandler(mediator, queries.HandleGetEpisodeAudio)

	mediatr.RegisterHandler(mediator, commands.HandleReviewEpisode)
	mediatr.RegisterHandler(mediator, queries.HandleListPendingEpisodes)
	mediatr.RegisterHandler(mediator, queries.HandleGetDashboard)

	mediatr.RegisterHandler(mediator, commands.HandleSubscribe)
	mediatr.RegisterHandler(mediator, commands.HandleUnsubscribe)

	mediatr.RegisterHandler(mediator, commands.HandleAddComment)
	mediatr.RegisterHandler(mediator, commands.HandleEditComment)

	mediatr.RegisterHandler(mediator, commands.HandleDeleteAccount)

	ioc.RegisterSingleton(dc, func(_ *ioc.DependencyProvider) mediatr.Mediator {
		return mediator
	})
}
