package registry

// The descriptor table below is the authoritative tool catalog. The README
// table mirrors it row for row; registry tests pin the name set, group
// membership, and read-only flags so the two cannot drift.

// Shared path parameters.
var (
	appSlug = Param{
		Name: "app_slug", Type: TypeString, Required: true, In: InPath,
		Description: `Identifier of the Bitrise app (e.g., "d8db74e2675d54c4" or "8eb495d0-f653-4eed-910b-8d6b56cc0ec7")`,
	}
	buildSlug = Param{
		Name: "build_slug", Type: TypeString, Required: true, In: InPath,
		Description: "Identifier of the Bitrise build",
	}
	workspaceSlug = Param{
		Name: "workspace_slug", Type: TypeString, Required: true, In: InPath,
		Description: "Slug of the Bitrise workspace",
	}
	pipelineID = Param{
		Name: "pipeline_id", Type: TypeString, Required: true, In: InPath,
		Description: "Identifier of the pipeline",
	}
)

// catalog is defined once; Catalog returns copies so callers can never
// mutate the registry.
var catalog = []ToolDescriptor{

	// ===== Apps =====

	{
		Name:        "list_apps",
		Description: "List all the apps available for the authenticated account.",
		Groups:      []APIGroup{GroupApps},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps"},
		Params: []Param{
			{Name: "sort_by", Type: TypeEnum, In: InQuery, Enum: []string{"last_build_at", "created_at"},
				Description: "Order of the apps: last_build_at (default) or created_at"},
			{Name: "next", Type: TypeString, In: InQuery,
				Description: "Slug of the first app in the response"},
			{Name: "limit", Type: TypeInteger, In: InQuery,
				Description: "Max number of elements per page (default: 50)"},
		},
	},
	{
		Name: "register_app",
		Description: "Add a new app to Bitrise. After this app should be finished on order to be registered completely on Bitrise (via the finish_bitrise_app tool). " +
			"Before doing this step, try understanding the repository details from the repository URL. " +
			"This is a two-step process. First, you register the app with the Bitrise API, and then you finish the setup. " +
			"The first step creates a new app in Bitrise, and the second step configures it with the necessary settings. " +
			"If the user has multiple workspaces, always prompt the user to choose which one you should use. " +
			"Don't prompt the user for finishing the app, just do it automatically.",
		Groups:   []APIGroup{GroupApps},
		Endpoint: Endpoint{Method: "POST", Path: "/apps/register"},
		Params: []Param{
			{Name: "repo_url", Type: TypeString, Required: true, In: InBody, Description: "Repository URL"},
			{Name: "is_public", Type: TypeBoolean, Required: true, In: InBody,
				Description: `Whether the app's builds visibility is "public"`},
			{Name: "organization_slug", Type: TypeString, Required: true, In: InBody,
				Description: "The organization (aka workspace) the app to add to"},
			{Name: "project_type", Type: TypeString, In: InBody, Default: "other",
				Description: "Type of project (ios, android, etc.)"},
			{Name: "provider", Type: TypeString, In: InBody, Default: "github", Description: "github"},
		},
	},
	{
		Name: "finish_bitrise_app",
		Description: "Finish the setup of a Bitrise app. If this is successful, a build can be triggered via trigger_bitrise_build. " +
			"If you have access to the repository, decide the project type, the stack ID, and the config to use, based on https://stacks.bitrise.io/, and the config should be also based on the project type.",
		Groups:   []APIGroup{GroupApps},
		Endpoint: Endpoint{Method: "POST", Path: "/apps/{app_slug}/finish"},
		Params: []Param{
			{Name: "app_slug", Type: TypeString, Required: true, In: InPath,
				Description: "The slug of the Bitrise app to finish setup for."},
			{Name: "project_type", Type: TypeString, In: InBody, Default: "other",
				Description: "The type of project (e.g., android, ios, flutter, etc.)."},
			{Name: "stack_id", Type: TypeString, In: InBody, Default: "linux-docker-android-22.04",
				Description: `The stack ID to use for the app (default is "linux-docker-android-22.04").`},
			{Name: "mode", Type: TypeString, In: InBody, Default: "manual",
				Description: `The mode of setup (default is "manual").`},
			{Name: "config", Type: TypeString, In: InBody, Default: "other-config",
				Description: `The configuration to use for the app (default is "default-android-config", other valid values are "other-config", "default-ios-config", "default-macos-config", etc).`},
		},
	},
	{
		Name:        "get_app",
		Description: "Get the details of a specific app.",
		Groups:      []APIGroup{GroupApps},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}"},
		Params:      []Param{appSlug},
	},
	{
		Name:        "delete_app",
		Description: "Delete an app from Bitrise. When deleting apps belonging to multiple workspaces always confirm that which workspaces' apps the user wants to delete.",
		Groups:      []APIGroup{GroupApps},
		Endpoint:    Endpoint{Method: "DELETE", Path: "/apps/{app_slug}"},
		Params:      []Param{appSlug},
	},
	{
		Name:        "update_app",
		Description: "Update an app.",
		Groups:      []APIGroup{GroupApps},
		Endpoint:    Endpoint{Method: "PATCH", Path: "/apps/{app_slug}"},
		Params: []Param{
			appSlug,
			{Name: "is_public", Type: TypeBoolean, Required: true, In: InBody,
				Description: `Whether the app's builds visibility is "public"`},
			{Name: "project_type", Type: TypeString, Required: true, In: InBody, Description: "Type of project"},
			{Name: "provider", Type: TypeString, Required: true, In: InBody, Description: "Repository provider"},
			{Name: "repo_url", Type: TypeString, Required: true, In: InBody, Description: "Repository URL"},
		},
	},
	{
		Name:        "get_bitrise_yml",
		Description: "Get the current Bitrise YML config file of a specified Bitrise app.",
		Groups:      []APIGroup{GroupApps},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/bitrise.yml"},
		Params:      []Param{appSlug},
	},
	{
		Name:        "update_bitrise_yml",
		Description: "Update the Bitrise YML config file of a specified Bitrise app.",
		Groups:      []APIGroup{GroupApps},
		Endpoint:    Endpoint{Method: "POST", Path: "/apps/{app_slug}/bitrise.yml"},
		Params: []Param{
			appSlug,
			{Name: "bitrise_yml_as_json", Type: TypeString, Required: true, In: InBody,
				BodyKey:     "app_config_datastore_yaml",
				Description: "The new Bitrise YML config file content to be updated. It must be a string."},
		},
	},
	{
		Name:        "list_branches",
		Description: "List the branches with existing builds of an app's repository.",
		Groups:      []APIGroup{GroupApps},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/branches"},
		Params:      []Param{appSlug},
	},
	{
		Name:        "register_ssh_key",
		Description: "Add an SSH-key to a specific app.",
		Groups:      []APIGroup{GroupApps},
		Endpoint:    Endpoint{Method: "POST", Path: "/apps/{app_slug}/register-ssh-key"},
		Params: []Param{
			appSlug,
			{Name: "auth_ssh_private_key", Type: TypeString, Required: true, In: InBody, Description: "Private SSH key"},
			{Name: "auth_ssh_public_key", Type: TypeString, Required: true, In: InBody, Description: "Public SSH key"},
			{Name: "is_register_key_into_provider_service", Type: TypeBoolean, Required: true, In: InBody,
				Description: "Register the key in the provider service"},
		},
	},
	{
		Name:        "register_webhook",
		Description: "Register an incoming webhook for a specific application.",
		Groups:      []APIGroup{GroupApps},
		Endpoint:    Endpoint{Method: "POST", Path: "/apps/{app_slug}/register-webhook"},
		Params:      []Param{appSlug},
	},

	// ===== Builds =====

	{
		Name:        "list_builds",
		Description: "List all the builds of a specified Bitrise app or all accessible builds.",
		Groups:      []APIGroup{GroupBuilds},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/builds", AltPath: "/builds"},
		Params: []Param{
			{Name: "app_slug", Type: TypeString, In: InPath,
				Description: "Identifier of the Bitrise app (optional)"},
			{Name: "sort_by", Type: TypeEnum, In: InQuery, Enum: []string{"created_at", "running_first"},
				Description: "Order of builds: created_at (default), running_first"},
			{Name: "branch", Type: TypeString, In: InQuery, Description: "Filter builds by branch"},
			{Name: "workflow", Type: TypeString, In: InQuery, Description: "Filter builds by workflow"},
			{Name: "status", Type: TypeInteger, In: InQuery,
				Description: "Filter builds by status (0: not finished, 1: successful, 2: failed, 3: aborted, 4: in-progress)"},
			{Name: "next", Type: TypeString, In: InQuery, Description: "Slug of the first build in the response"},
			{Name: "limit", Type: TypeInteger, In: InQuery, Description: "Max number of elements per page (default: 50)"},
		},
	},
	{
		Name:        "trigger_bitrise_build",
		Description: "Trigger a new build/pipeline for a specified Bitrise app.",
		Groups:      []APIGroup{GroupBuilds},
		Endpoint:    Endpoint{Method: "POST", Path: "/apps/{app_slug}/builds"},
		StaticBody:  map[string]any{"hook_info": map[string]any{"type": "bitrise"}},
		Params: []Param{
			appSlug,
			{Name: "branch", Type: TypeString, In: InBody, BodyKey: "build_params.branch", Default: "main",
				Description: "The branch to build (default: main)"},
			{Name: "workflow_id", Type: TypeString, In: InBody, BodyKey: "build_params.workflow_id",
				Description: "The workflow to build (optional)"},
			{Name: "commit_message", Type: TypeString, In: InBody, BodyKey: "build_params.commit_message",
				Description: "The commit message for the build (optional)"},
			{Name: "commit_hash", Type: TypeString, In: InBody, BodyKey: "build_params.commit_hash",
				Description: "The commit hash for the build (optional)"},
			{Name: "stream_progress", Type: TypeBoolean, Local: true,
				Description: "Poll the triggered build until it finishes and report progress notifications"},
			{Name: "poll_interval", Type: TypeInteger, Local: true,
				Description: "Polling interval in seconds when stream_progress is enabled (default: 30)"},
		},
	},
	{
		Name:        "get_build",
		Description: "Get a specific build of a given app.",
		Groups:      []APIGroup{GroupBuilds},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/builds/{build_slug}"},
		Params:      []Param{appSlug, buildSlug},
	},
	{
		Name:        "abort_build",
		Description: "Abort a specific build.",
		Groups:      []APIGroup{GroupBuilds},
		Endpoint:    Endpoint{Method: "POST", Path: "/apps/{app_slug}/builds/{build_slug}/abort"},
		StaticBody:  map[string]any{},
		Params: []Param{
			appSlug,
			buildSlug,
			{Name: "reason", Type: TypeString, In: InBody, BodyKey: "abort_reason",
				Description: "Reason for aborting the build"},
		},
	},
	{
		Name:        "get_build_log",
		Description: "Get the build log of a specified build of a Bitrise app.",
		Groups:      []APIGroup{GroupBuilds},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/builds/{build_slug}/log"},
		Params: []Param{
			appSlug,
			buildSlug,
			{Name: "failed_step_only", Type: TypeBoolean, Local: true,
				Description: "Return only the log of a failed step instead of the full log"},
			{Name: "failed_step_index", Type: TypeInteger, Local: true,
				Description: "1-based index of the failed step to show when failed_step_only is set (default: 1)"},
		},
	},
	{
		Name:        "get_build_bitrise_yml",
		Description: "Get the bitrise.yml of a build.",
		Groups:      []APIGroup{GroupBuilds},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/builds/{build_slug}/bitrise.yml"},
		Params:      []Param{appSlug, buildSlug},
	},
	{
		Name:        "list_build_workflows",
		Description: "List the workflows of an app.",
		Groups:      []APIGroup{GroupBuilds},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/build-workflows"},
		Params:      []Param{appSlug},
	},

	// ===== Build Artifacts =====

	{
		Name:        "list_artifacts",
		Description: "Get a list of all build artifacts.",
		Groups:      []APIGroup{GroupBuildArtifacts},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/builds/{build_slug}/artifacts"},
		Params: []Param{
			appSlug,
			buildSlug,
			{Name: "next", Type: TypeString, In: InQuery, Description: "Slug of the first artifact in the response"},
			{Name: "limit", Type: TypeInteger, In: InQuery, Description: "Max number of elements per page (default: 50)"},
		},
	},
	{
		Name:        "get_artifact",
		Description: "Get a specific build artifact.",
		Groups:      []APIGroup{GroupBuildArtifacts},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/builds/{build_slug}/artifacts/{artifact_slug}"},
		Params: []Param{
			appSlug,
			buildSlug,
			{Name: "artifact_slug", Type: TypeString, Required: true, In: InPath, Description: "Identifier of the artifact"},
		},
	},
	{
		Name:        "delete_artifact",
		Description: "Delete a build artifact.",
		Groups:      []APIGroup{GroupBuildArtifacts},
		Endpoint:    Endpoint{Method: "DELETE", Path: "/apps/{app_slug}/builds/{build_slug}/artifacts/{artifact_slug}"},
		Params: []Param{
			appSlug,
			buildSlug,
			{Name: "artifact_slug", Type: TypeString, Required: true, In: InPath, Description: "Identifier of the artifact"},
		},
	},
	{
		Name:        "update_artifact",
		Description: "Update a build artifact.",
		Groups:      []APIGroup{GroupBuildArtifacts},
		Endpoint:    Endpoint{Method: "PATCH", Path: "/apps/{app_slug}/builds/{build_slug}/artifacts/{artifact_slug}"},
		Params: []Param{
			appSlug,
			buildSlug,
			{Name: "artifact_slug", Type: TypeString, Required: true, In: InPath, Description: "Identifier of the artifact"},
			{Name: "is_public_page_enabled", Type: TypeBoolean, Required: true, In: InBody,
				Description: "Enable public page for the artifact"},
		},
	},

	// ===== Webhooks =====

	{
		Name:        "list_outgoing_webhooks",
		Description: "List the outgoing webhooks of an app.",
		Groups:      []APIGroup{GroupWebhooks},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/outgoing-webhooks"},
		Params:      []Param{appSlug},
	},
	{
		Name:        "delete_outgoing_webhook",
		Description: "Delete the outgoing webhook of an app.",
		Groups:      []APIGroup{GroupWebhooks},
		Endpoint:    Endpoint{Method: "DELETE", Path: "/apps/{app_slug}/outgoing-webhooks/{webhook_slug}"},
		Params: []Param{
			appSlug,
			{Name: "webhook_slug", Type: TypeString, Required: true, In: InPath, Description: "Identifier of the webhook"},
		},
	},
	{
		Name:        "update_outgoing_webhook",
		Description: "Update an outgoing webhook for an app.",
		Groups:      []APIGroup{GroupWebhooks},
		Endpoint:    Endpoint{Method: "PUT", Path: "/apps/{app_slug}/outgoing-webhooks/{webhook_slug}"},
		Params: []Param{
			appSlug,
			{Name: "webhook_slug", Type: TypeString, Required: true, In: InPath, Description: "Identifier of the webhook"},
			{Name: "events", Type: TypeStringList, Required: true, In: InBody,
				Description: "List of events to trigger the webhook"},
			{Name: "url", Type: TypeString, Required: true, In: InBody, Description: "URL of the webhook"},
			{Name: "headers", Type: TypeObject, In: InBody, Description: "Headers to be sent with the webhook"},
		},
	},
	{
		Name:        "create_outgoing_webhook",
		Description: "Create an outgoing webhook for an app.",
		Groups:      []APIGroup{GroupWebhooks},
		Endpoint:    Endpoint{Method: "POST", Path: "/apps/{app_slug}/outgoing-webhooks"},
		Params: []Param{
			appSlug,
			{Name: "events", Type: TypeStringList, Required: true, In: InBody,
				Description: "List of events to trigger the webhook"},
			{Name: "url", Type: TypeString, Required: true, In: InBody, Description: "URL of the webhook"},
			{Name: "headers", Type: TypeObject, In: InBody, Description: "Headers to be sent with the webhook"},
		},
	},

	// ===== Cache Items =====

	{
		Name:        "list_cache_items",
		Description: "List the key-value cache items belonging to an app.",
		Groups:      []APIGroup{GroupCacheItems},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/cache-items"},
		Params:      []Param{appSlug},
	},
	{
		Name:        "delete_all_cache_items",
		Description: "Delete all key-value cache items belonging to an app.",
		Groups:      []APIGroup{GroupCacheItems},
		Endpoint:    Endpoint{Method: "DELETE", Path: "/apps/{app_slug}/cache-items"},
		Params:      []Param{appSlug},
	},
	{
		Name:        "delete_cache_item",
		Description: "Delete a key-value cache item.",
		Groups:      []APIGroup{GroupCacheItems},
		Endpoint:    Endpoint{Method: "DELETE", Path: "/apps/{app_slug}/cache-items/{cache_item_id}"},
		Params: []Param{
			appSlug,
			{Name: "cache_item_id", Type: TypeString, Required: true, In: InPath, Description: "Identifier of the cache item"},
		},
	},
	{
		Name:        "get_cache_item_download_url",
		Description: "Get the download URL of a key-value cache item.",
		Groups:      []APIGroup{GroupCacheItems},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/cache-items/{cache_item_id}/download"},
		Params: []Param{
			appSlug,
			{Name: "cache_item_id", Type: TypeString, Required: true, In: InPath, Description: "Identifier of the cache item"},
		},
	},

	// ===== Pipelines =====

	{
		Name:        "list_pipelines",
		Description: "List all pipelines and standalone builds of an app.",
		Groups:      []APIGroup{GroupPipelines},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/pipelines"},
		Params:      []Param{appSlug},
	},
	{
		Name:        "get_pipeline",
		Description: "Get a pipeline of a given app.",
		Groups:      []APIGroup{GroupPipelines},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/pipelines/{pipeline_id}"},
		Params:      []Param{appSlug, pipelineID},
	},
	{
		Name:        "abort_pipeline",
		Description: "Abort a pipeline.",
		Groups:      []APIGroup{GroupPipelines},
		Endpoint:    Endpoint{Method: "POST", Path: "/apps/{app_slug}/pipelines/{pipeline_id}/abort"},
		StaticBody:  map[string]any{},
		Params: []Param{
			appSlug,
			pipelineID,
			{Name: "reason", Type: TypeString, In: InBody, BodyKey: "abort_reason",
				Description: "Reason for aborting the pipeline"},
		},
	},
	{
		Name:        "rebuild_pipeline",
		Description: "Rebuild a pipeline.",
		Groups:      []APIGroup{GroupPipelines},
		Endpoint:    Endpoint{Method: "POST", Path: "/apps/{app_slug}/pipelines/{pipeline_id}/rebuild"},
		StaticBody:  map[string]any{},
		Params:      []Param{appSlug, pipelineID},
	},

	// ===== Group Roles =====

	{
		Name:        "list_group_roles",
		Description: "List group roles for an app.",
		Groups:      []APIGroup{GroupGroupRoles},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/apps/{app_slug}/roles/{role_name}"},
		Params: []Param{
			appSlug,
			{Name: "role_name", Type: TypeString, Required: true, In: InPath, Description: "Name of the role"},
		},
	},
	{
		Name:        "replace_group_roles",
		Description: "Replace group roles for an app.",
		Groups:      []APIGroup{GroupGroupRoles},
		Endpoint:    Endpoint{Method: "PUT", Path: "/apps/{app_slug}/roles/{role_name}"},
		Params: []Param{
			appSlug,
			{Name: "role_name", Type: TypeString, Required: true, In: InPath, Description: "Name of the role"},
			{Name: "group_slugs", Type: TypeStringList, Required: true, In: InBody, BodyKey: "groups",
				Description: "List of group slugs"},
		},
	},

	// ===== Workspaces =====

	{
		Name:        "list_workspaces",
		Description: "List the workspaces the user has access to",
		Groups:      []APIGroup{GroupWorkspaces},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/organizations"},
	},
	{
		Name:        "get_workspace",
		Description: "Get details for one workspace",
		Groups:      []APIGroup{GroupWorkspaces},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/organizations/{workspace_slug}"},
		Params:      []Param{workspaceSlug},
	},
	{
		Name:        "get_workspace_groups",
		Description: "Get the groups in a workspace",
		Groups:      []APIGroup{GroupWorkspaces},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/organizations/{workspace_slug}/groups"},
		Params:      []Param{workspaceSlug},
	},
	{
		Name:        "create_workspace_group",
		Description: "Create a group in a workspace",
		Groups:      []APIGroup{GroupWorkspaces},
		Endpoint:    Endpoint{Method: "POST", Path: "/organizations/{workspace_slug}/groups"},
		Params: []Param{
			workspaceSlug,
			{Name: "group_name", Type: TypeString, Required: true, In: InBody, BodyKey: "name",
				Description: "Name of the group"},
		},
	},
	{
		Name:        "get_workspace_members",
		Description: "Get the members of a workspace",
		Groups:      []APIGroup{GroupWorkspaces},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/organizations/{workspace_slug}/members"},
		Params:      []Param{workspaceSlug},
	},
	{
		Name:        "invite_member_to_workspace",
		Description: "Invite a member to a workspace",
		Groups:      []APIGroup{GroupWorkspaces},
		Endpoint:    Endpoint{Method: "POST", Path: "/organizations/{workspace_slug}/members"},
		Params: []Param{
			workspaceSlug,
			{Name: "email", Type: TypeString, Required: true, In: InBody, Description: "Email address of the user"},
		},
	},
	{
		Name:        "add_member_to_group",
		Description: "Add a member to a group",
		Groups:      []APIGroup{GroupWorkspaces},
		Endpoint:    Endpoint{Method: "POST", Path: "/groups/{group_slug}/add_member"},
		Params: []Param{
			{Name: "group_slug", Type: TypeString, Required: true, In: InPath, Description: "Slug of the group"},
			{Name: "user_slug", Type: TypeString, Required: true, In: InBody, BodyKey: "user_id",
				Description: "Slug of the user"},
		},
	},

	// ===== Account =====

	{
		Name:        "me",
		Description: "Get info from the currently authenticated user account",
		Groups:      []APIGroup{GroupAccount},
		ReadOnly:    true,
		Endpoint:    Endpoint{Method: "GET", Path: "/me"},
	},
}

// Catalog returns the full, ordered descriptor table. The order is stable
// and the call has no side effects; repeated calls return identical content.
func Catalog() []ToolDescriptor {
	out := make([]ToolDescriptor, len(catalog))
	copy(out, catalog)
	return out
}
