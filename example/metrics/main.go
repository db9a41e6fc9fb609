package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plouton-fw/transfer"
)

func main() {
	ctx, err := transfer.NewBuilder().
		Directory("./capture").
		Format("csv").
		Build()
	if err != nil {
		panic(err)
	}
	defer ctx.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(transfer.NewStatsCollector(ctx, "plouton"))

	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(":9090", nil); err != nil {
			panic(err)
		}
	}()

	for i := uint64(0); ; i++ {
		_ = ctx.LogMetric(uint64(time.Now().Unix()), "heartbeat", i, "metrics demo")
		_ = ctx.Flush(false)
		time.Sleep(time.Second)
	}
}
