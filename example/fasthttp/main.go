package main

import (
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/plouton-fw/transfer"
	"github.com/plouton-fw/transfer/compat"
)

func main() {
	ctx, err := transfer.NewBuilder().
		Directory("./fasthttp-capture").
		Format("json").
		AutoFlush(true).
		BufferSize("8KB").
		Build()
	if err != nil {
		panic(err)
	}
	defer ctx.Close()

	adapter := compat.NewFastHTTPAdapter(
		ctx,
		compat.WithDefaultLevel(transfer.LevelInfo),
	)

	server := &fasthttp.Server{
		Handler: requestHandler,
		Logger:  adapter,

		Name:         "capture-server",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func requestHandler(rc *fasthttp.RequestCtx) {
	rc.SetContentType("text/plain")
	fmt.Fprintf(rc, "Hello, world! Path: %s\n", rc.Path())
}
