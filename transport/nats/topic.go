package nats

import (
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/ragger"
)

func Topic(edgeID string) string {
	return "edges." + edgeID + ".ragger"
}

func AddEndpoints(group micro.Group, endpoints ragger.EndpointSet) {
	group.AddEndpoint("ask", AskHandler(endpoints.Ask))
	group.AddEndpoint("reset", ResetHandler(endpoints.Reset))
	group.AddEndpoint("search", SearchHandler(endpoints.Search))
	group.AddEndpoint("history", HistoryHandler(endpoints.History))
}
