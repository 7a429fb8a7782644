package capture

import "fmt"

// captureSystemPrompt extends the agent's system prompt so it captures
// every distinct UI state, especially the ones with no URL of their own
// (modals, popups, dropdowns), by describing them rather than by issuing
// explicit screenshot commands.
const captureSystemPrompt = `
CRITICAL INSTRUCTIONS FOR UI STATE CAPTURE:

Your goal is to capture EVERY distinct UI state during this workflow, especially states
that don't have URLs (modals, popups, forms, dropdowns).

1. **Screenshots Are Automatic**:
- With vision mode enabled, a screenshot is captured at the END of each step
- You don't need to request screenshots explicitly
- Focus on describing what you see, not on taking screenshots

2. **Capture Non-URL States** (CRITICAL):
When modals, dialogs, dropdown menus, or popups appear:
- Describe what you see in your next_goal field
- The automatic screenshot will capture the current state
- Examples of non-URL states to capture:
    * Modal windows (project creation, settings, etc.)
    * Dropdown menus (filters, selections)
    * Popups and overlays
    * Form wizards and multi-step flows
    * Success/confirmation messages

3. **Document Every State** (CRITICAL):
In your next_goal field, describe the CURRENT UI state you're viewing:
- GOOD: "Viewing modal titled 'Create Project' with 3 input fields: Name, Description, Team"
- GOOD: "Dropdown menu expanded showing 5 priority options: High, Medium, Low, None, Urgent"
- GOOD: "Form filled - Project name: 'Marketing', Description entered, ready to submit"
- BAD: "Clicking create button" (describes action, not state)
- BAD: "Going to projects" (too vague)

4. **Efficient Execution**:
- Take MAXIMUM 2 actions per step for better state coverage
- DO NOT use explicit wait() actions unless absolutely necessary (e.g., animations, slow network)
- The browser automatically waits for page loads and UI to settle between actions
- Trust the automatic timing - focus on taking actions and describing states
- Only use wait() if you see a specific loading indicator that needs time

5. **Form Filling Strategy**:
- Fill 2-3 related fields per step, not all at once
- Example: Step 1: Fill "Name" and "Description", Step 2: Fill "Team" and "Priority"
- This captures the form in multiple states as it's being filled

6. **Success/Completion States**:
- Always capture the final success or confirmation screen
- Describe what indicates success (green checkmark, "Created successfully" message, etc.)
- Use the done action only after capturing the completion state

7. **Multi-Step Workflows**:
- For wizards or multi-step forms, capture each step/screen
- Describe which step you're on (e.g., "Step 2 of 3: Selecting team members")

REMEMBER: Your goal is to move through the workflow slowly enough that each important
UI state (especially modals and popups that have no URL) gets captured in a screenshot.
Describe what you see clearly, and the automatic screenshots will document everything.
`

func agentTask(appURL, instruction string) string {
	return fmt.Sprintf("Open the URL: %s. Perform the task: %s. "+
		"Take screenshots at every major UI state change, especially modals, forms, and confirmation screens.",
		appURL, instruction)
}

func judgePrompt(task, appName string) string {
	return fmt.Sprintf(`Evaluate if the task was completed successfully.

Task: %s
Application: %s

Success criteria:
1. All required fields were filled/actions taken as specified in the task
2. Final state shows task completion (success message, created item visible, confirmation dialog, etc.)
3. No errors, failures, or blockers occurred (no captchas, no auth failures, no error messages)
4. The workflow reached its natural completion state

Examples of SUCCESS indicators:
- "Created successfully" message
- "Project created" confirmation
- New item visible in list/dashboard
- Success checkmark or notification
- Redirected to the newly created item's page

Examples of FAILURE indicators:
- Stuck on login/authentication page
- Captcha encountered
- Error messages displayed
- Task incomplete (e.g., modal still open, form not submitted)
- Browser stuck on same page without progress

Return verdict=true ONLY if the task is FULLY completed with clear success indicators.
Return verdict=false if the task is incomplete, stuck, or encountered errors.`, task, appName)
}
