package discord

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"

	"devbot/internal/ai"
	"devbot/internal/apperr"
	"devbot/internal/contact"
	"devbot/internal/lifecycle"
	"devbot/internal/models"
	"devbot/internal/settings"
	"devbot/internal/store"
)

const (
	testGuild    models.Snowflake = 1180000000000000001
	tasksChannel models.Snowflake = 500
	logsChannel  models.Snowflake = 501
	devCategory  models.Snowflake = 502
	panelChannel models.Snowflake = 600
	userOne      models.Snowflake = 1001
	userTwo      models.Snowflake = 1002
	developer    models.Snowflake = 1003
)

type postedEmbed struct {
	channel models.Snowflake
	embed   *discordgo.MessageEmbed
}

// fakeDiscord stands in for the REST surface in handler tests.
type fakeDiscord struct {
	mu       sync.Mutex
	nextID   models.Snowflake
	embeds   []postedEmbed
	threads  map[models.Snowflake][]string
	closed   []models.Snowflake
	channels []contact.PrivateChannel
	members  map[models.Snowflake]models.Member
}

func newFakeDiscord() *fakeDiscord {
	return &fakeDiscord{
		nextID:  7000,
		threads: map[models.Snowflake][]string{},
		members: map[models.Snowflake]models.Member{
			userOne:   {ID: userOne, Username: "one"},
			userTwo:   {ID: userTwo, Username: "two"},
			developer: {ID: developer, Username: "dev"},
		},
	}
}

func (f *fakeDiscord) id() models.Snowflake {
	f.nextID++
	return f.nextID
}

func (f *fakeDiscord) PostTaskCard(_ context.Context, channelID models.Snowflake, _ models.Task) (models.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.MessageRef{ChannelID: channelID, MessageID: f.id()}, nil
}

func (f *fakeDiscord) RefreshTaskCard(context.Context, models.Task) error { return nil }

func (f *fakeDiscord) StartThread(context.Context, models.Task) (models.Snowflake, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id(), nil
}

func (f *fakeDiscord) PostThreadControls(context.Context, models.Snowflake, models.Task) error {
	return nil
}

func (f *fakeDiscord) PostToThread(_ context.Context, threadID models.Snowflake, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threads[threadID] = append(f.threads[threadID], content)
	return nil
}

func (f *fakeDiscord) CloseThread(_ context.Context, threadID models.Snowflake) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, threadID)
	return nil
}

func (f *fakeDiscord) PostBoard(_ context.Context, channelID models.Snowflake, _ lifecycle.Board) (models.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.MessageRef{ChannelID: channelID, MessageID: f.id()}, nil
}

func (f *fakeDiscord) RefreshBoard(context.Context, models.MessageRef, lifecycle.Board) error {
	return nil
}

func (f *fakeDiscord) DeleteMessage(context.Context, models.MessageRef) error { return nil }

func (f *fakeDiscord) PostEmbed(_ context.Context, channelID models.Snowflake, embed *discordgo.MessageEmbed, _ []discordgo.MessageComponent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, postedEmbed{channel: channelID, embed: embed})
	return nil
}

func (f *fakeDiscord) PostMessage(context.Context, models.Snowflake, string) error { return nil }

func (f *fakeDiscord) CreatePrivateChannel(_ context.Context, _ models.Snowflake, req contact.PrivateChannel) (models.Snowflake, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, req)
	return f.id(), nil
}

func (f *fakeDiscord) Member(_ context.Context, _ models.Snowflake, userID models.Snowflake) (models.Member, error) {
	member, ok := f.members[userID]
	if !ok {
		return models.Member{}, apperr.ErrNotExist
	}
	return member, nil
}

func (f *fakeDiscord) embedTitles(channel models.Snowflake) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.embeds {
		if e.channel == channel {
			out = append(out, e.embed.Title)
		}
	}
	return out
}

type fakeCompleter struct {
	reply string
	err   error
}

func (c fakeCompleter) Complete(context.Context, string, string) (string, error) {
	return c.reply, c.err
}

type handlerHarness struct {
	handler *Handler
	discord *fakeDiscord
	store   *store.FileStore
}

func newHandlerHarness(t *testing.T, completer ai.Completer) *handlerHarness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.NewFileStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	tasks, logs, category := tasksChannel, logsChannel, devCategory
	if _, err := st.UpdateConfig(context.Background(), testGuild, store.ConfigUpdate{
		TasksChannel: &tasks,
		LogsChannel:  &logs,
		DevCategory:  &category,
	}); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	fake := newFakeDiscord()
	audit := NewAuditLog(st, fake)
	engine := lifecycle.New(lifecycle.Deps{
		Tasks:   st,
		Configs: st,
		Surface: fake,
		Members: fake,
		Audit:   audit,
		Logger:  logger,
	})
	relay := ai.NewRelay(st, nil, logger)
	if completer != nil {
		relay = ai.NewRelay(st, completer, logger)
	}
	h := NewHandler(HandlerDeps{
		Engine:   engine,
		Settings: settings.New(st, completer != nil, logger),
		Contact:  contact.New(st, fake, fake, audit, logger),
		Relay:    relay,
		Panels:   fake,
		Logger:   logger,
	})
	return &handlerHarness{handler: h, discord: fake, store: st}
}

func member(userID models.Snowflake, perms int64) *discordgo.Member {
	return &discordgo.Member{
		User:        &discordgo.User{ID: userID.String(), Username: "user" + userID.String()},
		Permissions: perms,
	}
}

func interaction(kind discordgo.InteractionType, data discordgo.InteractionData, m *discordgo.Member, channel models.Snowflake) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "1",
		Type:      kind,
		GuildID:   testGuild.String(),
		ChannelID: channel.String(),
		Member:    m,
		Data:      data,
	}}
}

func slash(name string, m *discordgo.Member, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return interaction(discordgo.InteractionApplicationCommand, discordgo.ApplicationCommandInteractionData{Name: name, Options: opts}, m, panelChannel)
}

func button(customID string, m *discordgo.Member, channel models.Snowflake, values ...string) *discordgo.InteractionCreate {
	return interaction(discordgo.InteractionMessageComponent, discordgo.MessageComponentInteractionData{CustomID: customID, Values: values}, m, channel)
}

func submit(customID string, m *discordgo.Member, channel models.Snowflake, fields map[string]string) *discordgo.InteractionCreate {
	rows := make([]discordgo.MessageComponent, 0, len(fields))
	for id, value := range fields {
		rows = append(rows, &discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: id, Value: value},
		}})
	}
	return interaction(discordgo.InteractionModalSubmit, discordgo.ModalSubmitInteractionData{CustomID: customID, Components: rows}, m, channel)
}

// content returns the text the user ends up seeing, running the followup of a
// deferred reply the way the bot does.
func content(t *testing.T, r reply) string {
	t.Helper()
	if r.followup != nil {
		params := r.followup(context.Background())
		if params == nil {
			t.Fatal("deferred reply produced no followup")
		}
		return params.Content
	}
	if r.response == nil || r.response.Data == nil {
		t.Fatalf("expected a message reply, got %+v", r.response)
	}
	return r.response.Data.Content
}

func isEphemeral(r reply) bool {
	return r.response != nil && r.response.Data != nil && r.response.Data.Flags&discordgo.MessageFlagsEphemeral != 0
}

func (h *handlerHarness) createTask(t *testing.T, creator models.Snowflake, title string) models.Task {
	t.Helper()
	r := h.handler.Dispatch(context.Background(), submit("modal:create_task", member(creator, 0), panelChannel, map[string]string{
		fieldTitle:       title,
		fieldDescription: "details",
		fieldPriority:    "",
	}))
	if got := content(t, r); !strings.HasPrefix(got, "Task #") {
		t.Fatalf("create reply = %q", got)
	}
	tasks, err := h.store.ListTasks(context.Background(), testGuild)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return tasks[len(tasks)]
}

func TestDispatchOutsideGuild(t *testing.T) {
	h := newHandlerHarness(t, nil)
	i := slash(cmdTasks, member(userOne, 0))
	i.GuildID = ""
	r := h.handler.Dispatch(context.Background(), i)
	if got := content(t, r); got != guildOnlyMessage || !isEphemeral(r) {
		t.Fatalf("reply = %q ephemeral=%v", got, isEphemeral(r))
	}
}

func TestCreateTaskFromModal(t *testing.T) {
	h := newHandlerHarness(t, nil)
	r := h.handler.Dispatch(context.Background(), submit("modal:create_task", member(userOne, 0), panelChannel, map[string]string{
		fieldTitle:       "Fix jump bug",
		fieldDescription: "Player clips",
	}))
	if got := content(t, r); got != "Task #1 created in <#500>." {
		t.Fatalf("reply = %q", got)
	}
	task, err := h.store.GetTask(context.Background(), testGuild, 1)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Priority != models.DefaultPriority || task.Status != models.StatusOpen || task.CreatorID != userOne {
		t.Fatalf("stored task = %+v", task)
	}
	if titles := h.discord.embedTitles(logsChannel); len(titles) != 1 || titles[0] != "Task #1 created" {
		t.Fatalf("audit log = %v", titles)
	}
}

func TestLifecycleInteractionsAcknowledgeBeforeWork(t *testing.T) {
	h := newHandlerHarness(t, nil)
	ctx := context.Background()

	r := h.handler.Dispatch(ctx, submit("modal:create_task", member(userOne, 0), panelChannel, map[string]string{
		fieldTitle: "Fix jump bug",
	}))
	if r.response == nil || r.response.Type != discordgo.InteractionResponseDeferredChannelMessageWithSource || !isEphemeral(r) {
		t.Fatalf("expected ephemeral deferred ack, got %+v", r.response)
	}
	if tasks, _ := h.store.ListTasks(ctx, testGuild); len(tasks) != 0 {
		t.Fatalf("task created before acknowledgement: %v", tasks)
	}
	if len(h.discord.embedTitles(logsChannel)) != 0 {
		t.Fatal("audit posted before acknowledgement")
	}

	params := r.followup(ctx)
	if params == nil || params.Content != "Task #1 created in <#500>." || params.Flags&discordgo.MessageFlagsEphemeral == 0 {
		t.Fatalf("followup = %+v", params)
	}
	if tasks, _ := h.store.ListTasks(ctx, testGuild); len(tasks) != 1 {
		t.Fatalf("expected task after followup, got %v", tasks)
	}

	tests := []struct {
		name string
		i    *discordgo.InteractionCreate
	}{
		{name: "assign me", i: button(taskRoute(actionAssignMe, 1).String(), member(userOne, 0), tasksChannel)},
		{name: "open thread", i: button(taskRoute(actionOpenThread, 1).String(), member(userOne, 0), tasksChannel)},
		{name: "mark done", i: button(taskRoute(actionMarkDone, 1).String(), member(userOne, 0), tasksChannel)},
		{name: "assign modal", i: submit(taskModalRoute(actionAssign, 1).String(), member(userOne, 0), tasksChannel, map[string]string{fieldUser: "1002"})},
		{name: "board", i: slash(cmdTasksBoard, member(userOne, discordgo.PermissionManageServer))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := h.handler.Dispatch(ctx, tc.i)
			if r.response == nil || r.response.Type != discordgo.InteractionResponseDeferredChannelMessageWithSource || r.followup == nil {
				t.Fatalf("expected deferred ack, got %+v", r.response)
			}
		})
	}
	task, _ := h.store.GetTask(ctx, testGuild, 1)
	if task.AssigneeID != 0 || task.Status != models.StatusOpen || !task.ThreadID.IsZero() {
		t.Fatalf("task changed without running followups: %+v", task)
	}
}

func TestCreateTaskRejectsEmptyTitle(t *testing.T) {
	h := newHandlerHarness(t, nil)
	r := h.handler.Dispatch(context.Background(), submit("modal:create_task", member(userOne, 0), panelChannel, map[string]string{
		fieldTitle: "   ",
	}))
	if got := content(t, r); got != "Task title is required." || !isEphemeral(r) {
		t.Fatalf("reply = %q", got)
	}
}

func TestTaskButtonsLifecycle(t *testing.T) {
	h := newHandlerHarness(t, nil)
	task := h.createTask(t, userOne, "Fix jump bug")
	ctx := context.Background()

	r := h.handler.Dispatch(ctx, button(taskRoute(actionAssignMe, task.ID).String(), member(userOne, 0), tasksChannel))
	if got := content(t, r); got != "Task #1 assigned to you." {
		t.Fatalf("assign reply = %q", got)
	}

	r = h.handler.Dispatch(ctx, button(taskRoute(actionOpenThread, task.ID).String(), member(userOne, 0), tasksChannel))
	got := content(t, r)
	if !strings.HasPrefix(got, "Task thread: <#") {
		t.Fatalf("open thread reply = %q", got)
	}
	stored, _ := h.store.GetTask(ctx, testGuild, task.ID)
	thread := stored.ThreadID
	if thread.IsZero() {
		t.Fatal("expected thread recorded")
	}

	r = h.handler.Dispatch(ctx, button(taskRoute(actionInProgress, task.ID).String(), member(userOne, 0), thread))
	if got := content(t, r); got != "Status updated to In Progress." {
		t.Fatalf("in progress reply = %q", got)
	}

	r = h.handler.Dispatch(ctx, button(taskRoute(actionMarkDone, task.ID).String(), member(userTwo, 0), thread))
	if got := content(t, r); got != "Only the assignee or a manager can mark this task as done." {
		t.Fatalf("foreign mark done reply = %q", got)
	}

	r = h.handler.Dispatch(ctx, submit(taskModalRoute(actionSubmitWork, task.ID).String(), member(userOne, 0), thread, map[string]string{
		fieldNotes: "see attachments",
	}))
	if got := content(t, r); !strings.HasPrefix(got, "Submission notes recorded.") {
		t.Fatalf("submit reply = %q", got)
	}

	r = h.handler.Dispatch(ctx, button(taskRoute(actionMarkDone, task.ID).String(), member(userOne, 0), thread))
	if got := content(t, r); got != "Task marked as completed and logged." {
		t.Fatalf("mark done reply = %q", got)
	}
	if len(h.discord.closed) != 1 || h.discord.closed[0] != thread {
		t.Fatalf("closed threads = %v", h.discord.closed)
	}
	if posts := h.discord.threads[thread]; len(posts) != 1 || posts[0] != "Work submission notes:\nsee attachments" {
		t.Fatalf("thread posts = %v", posts)
	}
}

func TestSubmitWorkOutsideThread(t *testing.T) {
	h := newHandlerHarness(t, nil)
	task := h.createTask(t, userOne, "Fix jump bug")
	r := h.handler.Dispatch(context.Background(), submit(taskModalRoute(actionSubmitWork, task.ID).String(), member(userOne, 0), tasksChannel, nil))
	if got := content(t, r); got != "This must be used inside the task thread." {
		t.Fatalf("reply = %q", got)
	}
}

func TestAssignOtherModal(t *testing.T) {
	h := newHandlerHarness(t, nil)
	task := h.createTask(t, userOne, "Fix jump bug")
	ctx := context.Background()

	r := h.handler.Dispatch(ctx, button(taskRoute(actionAssignTo, task.ID).String(), member(userOne, 0), tasksChannel))
	if r.response == nil || r.response.Type != discordgo.InteractionResponseModal {
		t.Fatalf("expected modal, got %+v", r.response)
	}

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "mention", raw: "<@!1002>", want: "Task #1 assigned to <@1002>."},
		{name: "garbage", raw: "someone", want: "Could not parse user ID."},
		{name: "unknown member", raw: "999", want: "User not found in this server."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := h.handler.Dispatch(ctx, submit(taskModalRoute(actionAssign, task.ID).String(), member(userOne, 0), tasksChannel, map[string]string{
				fieldUser: tc.raw,
			}))
			if got := content(t, r); got != tc.want {
				t.Fatalf("reply = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUnknownTaskButton(t *testing.T) {
	h := newHandlerHarness(t, nil)
	r := h.handler.Dispatch(context.Background(), button(taskRoute(actionAssignMe, 99).String(), member(userOne, 0), tasksChannel))
	if got := content(t, r); got != "Task not found." {
		t.Fatalf("reply = %q", got)
	}
	r = h.handler.Dispatch(context.Background(), button("task_assign_me", member(userOne, 0), tasksChannel))
	if got := content(t, r); got != "This control is no longer supported." {
		t.Fatalf("legacy id reply = %q", got)
	}
}

func TestListTasksCommand(t *testing.T) {
	h := newHandlerHarness(t, nil)
	ctx := context.Background()

	r := h.handler.Dispatch(ctx, slash(cmdTasks, member(userOne, 0)))
	if got := content(t, r); got != "No tasks found with that filter." {
		t.Fatalf("empty reply = %q", got)
	}

	h.createTask(t, userOne, "first")
	second := h.createTask(t, userOne, "second")
	h.handler.Dispatch(ctx, button(taskRoute(actionAssignMe, second.ID).String(), member(userTwo, 0), tasksChannel))

	r = h.handler.Dispatch(ctx, slash(cmdTasks, member(userTwo, 0),
		&discordgo.ApplicationCommandInteractionDataOption{Name: "mine", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
	))
	if isEphemeral(r) || len(r.response.Data.Embeds) != 1 {
		t.Fatalf("expected public embed, got %+v", r.response.Data)
	}
	embed := r.response.Data.Embeds[0]
	if embed.Description != "Found 1 task(s)." || embed.Fields[0].Name != "Task #2" {
		t.Fatalf("list embed = %+v", embed)
	}

	r = h.handler.Dispatch(ctx, slash(cmdTasks, member(userTwo, 0),
		&discordgo.ApplicationCommandInteractionDataOption{Name: "status", Type: discordgo.ApplicationCommandOptionString, Value: "Done"},
	))
	if got := content(t, r); got != `Unknown status "Done".` {
		t.Fatalf("bad status reply = %q", got)
	}
}

func TestPanelsRequirePermission(t *testing.T) {
	h := newHandlerHarness(t, nil)
	ctx := context.Background()

	r := h.handler.Dispatch(ctx, slash(cmdTaskPanel, member(userOne, 0)))
	if got := content(t, r); got != "You need the Manage Server permission to do that." {
		t.Fatalf("unprivileged reply = %q", got)
	}

	r = h.handler.Dispatch(ctx, slash(cmdTaskPanel, member(userOne, discordgo.PermissionManageServer)))
	if got := content(t, r); got != "Task panel created." {
		t.Fatalf("privileged reply = %q", got)
	}
	if titles := h.discord.embedTitles(panelChannel); len(titles) != 1 || titles[0] != "Task Management Panel" {
		t.Fatalf("panel posts = %v", titles)
	}

	r = h.handler.Dispatch(ctx, slash(cmdTasksBoard, member(userOne, discordgo.PermissionManageServer)))
	if got := content(t, r); got != "Task board created/updated in <#600>." {
		t.Fatalf("board reply = %q", got)
	}
	cfg, _ := h.store.GetConfig(ctx, testGuild)
	if cfg.BoardChannel != panelChannel || cfg.BoardMessage.IsZero() {
		t.Fatalf("board not recorded: %+v", cfg)
	}
}

func subOption(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionSubCommand, Options: opts}
}

func TestConfigCommands(t *testing.T) {
	h := newHandlerHarness(t, nil)
	ctx := context.Background()
	channelOpt := &discordgo.ApplicationCommandInteractionDataOption{Name: "tasks_channel", Type: discordgo.ApplicationCommandOptionChannel, Value: "777"}

	r := h.handler.Dispatch(ctx, slash(cmdConfig, member(userOne, discordgo.PermissionManageServer), subOption(subChannels, channelOpt)))
	if got := content(t, r); got != "Only administrators can change the bot configuration." {
		t.Fatalf("non-admin reply = %q", got)
	}

	admin := member(userOne, discordgo.PermissionAdministrator)
	r = h.handler.Dispatch(ctx, slash(cmdConfig, admin, subOption(subChannels, channelOpt)))
	if got := content(t, r); got != "Configuration updated." {
		t.Fatalf("channels reply = %q", got)
	}
	cfg, _ := h.store.GetConfig(ctx, testGuild)
	if cfg.TasksChannel != 777 || cfg.LogsChannel != logsChannel {
		t.Fatalf("config after update = %+v", cfg)
	}

	enable := &discordgo.ApplicationCommandInteractionDataOption{Name: "enabled", Type: discordgo.ApplicationCommandOptionBoolean, Value: true}
	r = h.handler.Dispatch(ctx, slash(cmdConfig, admin, subOption(subAI, enable)))
	if got := content(t, r); got != "AI cannot be enabled: GEMINI_API_KEY missing in environment." {
		t.Fatalf("ai reply = %q", got)
	}

	r = h.handler.Dispatch(ctx, slash(cmdConfig, admin, subOption(subShow)))
	if !isEphemeral(r) || len(r.response.Data.Embeds) != 1 {
		t.Fatalf("show reply = %+v", r.response.Data)
	}
	if desc := r.response.Data.Embeds[0].Description; !strings.Contains(desc, "Tasks channel: <#777>") || !strings.Contains(desc, "AI enabled: false") {
		t.Fatalf("show description = %q", desc)
	}
}

func TestDevPanelFlow(t *testing.T) {
	h := newHandlerHarness(t, nil)
	ctx := context.Background()
	manager := member(userOne, discordgo.PermissionManageServer)

	r := h.handler.Dispatch(ctx, slash(cmdDevPanel, manager, subOption(subPanel)))
	if got := content(t, r); got != "No developers configured. Use `/devpanel add` first." {
		t.Fatalf("empty roster reply = %q", got)
	}

	userOpt := &discordgo.ApplicationCommandInteractionDataOption{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: developer.String()}
	r = h.handler.Dispatch(ctx, slash(cmdDevPanel, manager, subOption(subAdd, userOpt)))
	if got := content(t, r); got != "<@1003> added as a dev contact." {
		t.Fatalf("add reply = %q", got)
	}

	r = h.handler.Dispatch(ctx, slash(cmdDevPanel, manager, subOption(subPanel)))
	if got := content(t, r); got != "Dev panel created." {
		t.Fatalf("panel reply = %q", got)
	}

	r = h.handler.Dispatch(ctx, button("dev:select", member(userTwo, 0), panelChannel, developer.String()))
	if got := content(t, r); !strings.HasPrefix(got, "Private dev channel created: <#") {
		t.Fatalf("select reply = %q", got)
	}
	if len(h.discord.channels) != 1 || h.discord.channels[0].Name != "dev-two-dev" || h.discord.channels[0].CategoryID != devCategory {
		t.Fatalf("channels = %+v", h.discord.channels)
	}
	if titles := h.discord.embedTitles(logsChannel); len(titles) != 1 || titles[0] != "Private Dev Channel Created" {
		t.Fatalf("audit = %v", titles)
	}
}

func TestAIFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		h := newHandlerHarness(t, fakeCompleter{reply: "ideas"})
		r := h.handler.Dispatch(ctx, slash(cmdAIPanel, member(userOne, 0)))
		if got := content(t, r); got != "AI helper is disabled. Ask an admin to run `/config ai enabled:true`." {
			t.Fatalf("reply = %q", got)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		h := newHandlerHarness(t, fakeCompleter{reply: "1. sketch\n2. build"})
		admin := member(userOne, discordgo.PermissionAdministrator)
		enable := &discordgo.ApplicationCommandInteractionDataOption{Name: "enabled", Type: discordgo.ApplicationCommandOptionBoolean, Value: true}
		if got := content(t, h.handler.Dispatch(ctx, slash(cmdConfig, admin, subOption(subAI, enable)))); got != "AI helper enabled for this server." {
			t.Fatalf("enable reply = %q", got)
		}
		if got := content(t, h.handler.Dispatch(ctx, slash(cmdAIPanel, member(userTwo, 0)))); got != "AI panel created." {
			t.Fatalf("panel reply = %q", got)
		}

		r := h.handler.Dispatch(ctx, button("ai:breakdown", member(userTwo, 0), panelChannel))
		if r.response.Type != discordgo.InteractionResponseModal || r.response.Data.CustomID != "modal:ai:breakdown" {
			t.Fatalf("expected ai modal, got %+v", r.response)
		}

		r = h.handler.Dispatch(ctx, submit("modal:ai:breakdown", member(userTwo, 0), panelChannel, map[string]string{fieldQuestion: "build a lobby"}))
		if r.response.Type != discordgo.InteractionResponseDeferredChannelMessageWithSource || r.followup == nil {
			t.Fatalf("expected deferred reply, got %+v", r.response)
		}
		params := r.followup(ctx)
		if len(params.Embeds) != 1 || params.Embeds[0].Title != "AI Task Breakdown" || params.Embeds[0].Description != "1. sketch\n2. build" {
			t.Fatalf("followup = %+v", params)
		}
	})

	t.Run("completion error", func(t *testing.T) {
		h := newHandlerHarness(t, fakeCompleter{err: errors.New("quota exceeded")})
		enabled := true
		if _, err := h.store.UpdateConfig(ctx, testGuild, store.ConfigUpdate{AIEnabled: &enabled}); err != nil {
			t.Fatalf("enable: %v", err)
		}
		r := h.handler.Dispatch(ctx, submit("modal:ai:general", member(userTwo, 0), panelChannel, map[string]string{fieldQuestion: "why"}))
		params := r.followup(ctx)
		if !strings.Contains(params.Content, "quota exceeded") || params.Flags&discordgo.MessageFlagsEphemeral == 0 {
			t.Fatalf("followup = %+v", params)
		}
	})
}

func TestAuditLogSkipsUnconfiguredGuild(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.NewFileStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	fake := newFakeDiscord()
	audit := NewAuditLog(st, fake)
	if err := audit.Record(context.Background(), testGuild, models.AuditEntry{Title: "x"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(fake.embeds) != 0 {
		t.Fatalf("expected nothing posted, got %d", len(fake.embeds))
	}
}
