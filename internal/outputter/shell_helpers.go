package outputter

// ShellHelpers returns the awsp() helper function users add to their
// ~/.bashrc or ~/.zshrc. The binary cannot mutate the parent shell's
// environment, so profile switching has to happen in shell space.
func ShellHelpers() string {
	return `# AWS Profile Management Helper Function
# Add this to your ~/.bashrc or ~/.zshrc

# Unified AWS profile management command
awsp() {
    if [ "$1" = "--help" ] || [ "$1" = "-h" ] || [ "$1" = "help" ] || [ "$#" -eq 0 ]; then
        echo "AWS Profile Manager - Manage your AWS profiles"
        echo ""
        echo "Usage: awsp <command> [options]"
        echo ""
        echo "Commands:"
        echo "  ls, list            List all AWS profiles"
        echo "    -a, --all         Show account IDs for all profiles (can be slow)"
        echo "  current             Show current profile"
        echo "  switch <profile>    Switch to specified profile"
        echo "  use <profile>       Alias for switch"
        echo "  validate [profile]  Validate profile credentials"
        echo "  sso <profile>       Refresh SSO credentials for profile"
        echo "  help                Show this help message"
        return
    fi

    case "$1" in
        ls|list)
            if [ "$2" = "-a" ] || [ "$2" = "--all" ]; then
                infrautilx profile list --all-accounts
            else
                infrautilx profile list
            fi
            ;;
        current)
            infrautilx profile current
            ;;
        switch|use)
            if [ -z "$2" ]; then
                echo "Error: Profile name required"
                echo "Usage: awsp switch <profile_name>"
                return 1
            fi
            if ! infrautilx profile switch "$2"; then
                return 1
            fi
            export AWS_PROFILE="$2"
            echo "AWS Profile set to: $AWS_PROFILE"
            ;;
        validate)
            if [ -z "$2" ]; then
                infrautilx profile validate
            else
                infrautilx profile validate --profile "$2"
            fi
            ;;
        sso)
            if [ -z "$2" ]; then
                echo "Error: Profile name required"
                echo "Usage: awsp sso <profile_name>"
                return 1
            fi
            infrautilx profile refresh-sso "$2"
            ;;
        *)
            echo "Error: Unknown command '$1'"
            echo "Run 'awsp help' for usage information"
            return 1
            ;;
    esac
}
`
}
