package handlers

import (
	"restora-api/notify"
	"restora-api/settlement"
)

var (
	// Engine settles orders; Dispatcher delivers emails in the background.
	// Both are wired from main at startup.
	Engine     *settlement.Engine
	Dispatcher *notify.Dispatcher
)

func Init(e *settlement.Engine, d *notify.Dispatcher) {
	Engine = e
	Dispatcher = d
}

func enqueueAll(events []notify.Event) {
	if Dispatcher == nil {
		return
	}
	for _, ev := range events {
		Dispatcher.Enqueue(ev)
	}
}
